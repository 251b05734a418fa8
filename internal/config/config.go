package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/service"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	serviceName      = "storefront"
	defaultJWTSecret = "your-secret-key-change-in-production"
	CacheStoreRedis  = "redis"
	CacheStoreMemory = "memory"
	envDevelopment   = "development"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`

	// JWT authentication
	JWTSecret string `env:"JWT_SECRET" envDefault:"your-secret-key-change-in-production"`

	// Backend commerce API
	BackendURL     string                          `env:"BACKEND_URL" envDefault:"http://localhost:8080/api/v1"`
	BackendHTTP    httpclient.Config               `envPrefix:"BACKEND_HTTP_"`
	BackendBreaker httpclient.CircuitBreakerConfig `envPrefix:"BACKEND_BREAKER_"`

	// Read-through cache
	CacheStore         string               `env:"CACHE_STORE" envDefault:"redis"`
	CacheKeyPrefix     string               `env:"CACHE_KEY_PREFIX" envDefault:"storefront:"`
	CacheSweepInterval time.Duration        `env:"CACHE_SWEEP_INTERVAL" envDefault:"1m"`
	CacheTTL           cache.TTLs           `envPrefix:"CACHE_TTL_"`
	Redis              database.RedisConfig `envPrefix:"REDIS_"`

	// Admin audit log
	AuditEnabled       bool                    `env:"AUDIT_ENABLED" envDefault:"true"`
	Postgres           database.PostgresConfig `envPrefix:"DB_"`
	SlowQueryThreshold time.Duration           `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Kafka. Leaving KAFKA_BROKERS empty disables both the audit event
	// producer and the invalidation consumer.
	Kafka        pkgkafka.ProducerConfig `envPrefix:"KAFKA_"`
	KafkaGroupID string                  `env:"KAFKA_GROUP_ID" envDefault:"storefront"`

	// HTTP surface
	CORS           middleware.CORSConfig `envPrefix:"CORS_"`
	RateLimitRPS   float64               `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int                   `env:"RATE_LIMIT_BURST" envDefault:"40"`
	CatalogMaxAge  int                   `env:"CATALOG_CACHE_MAX_AGE" envDefault:"60"`

	LoginRedirectPath  string        `env:"LOGIN_REDIRECT_PATH" envDefault:"/login"`
	LoginRedirectDelay time.Duration `env:"LOGIN_REDIRECT_DELAY" envDefault:"3s"`

	PprofEnabled bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:"," envDefault:"127.0.0.1/32,::1/128"`

	// Pricing. Zero means free shipping.
	ShippingFlatRate decimal.Decimal `env:"SHIPPING_FLAT_RATE" envDefault:"0"`

	Pages   service.PageSizes `envPrefix:"PAGE_SIZE_"`
	Tracing tracing.Config    `envPrefix:"OTEL_"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}

	cfg.BackendBreaker.Name = "backend"
	cfg.Tracing.ServiceName = serviceName
	cfg.Tracing.Environment = cfg.Environment
	cfg.CORS.Environment = cfg.Environment

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.Environment != envDevelopment && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be changed from default value in %s environment", c.Environment)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if u, err := url.Parse(c.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BACKEND_URL: %q", c.BackendURL)
	}
	if c.CacheStore != CacheStoreRedis && c.CacheStore != CacheStoreMemory {
		return fmt.Errorf("CACHE_STORE must be %q or %q, got %q", CacheStoreRedis, CacheStoreMemory, c.CacheStore)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	if c.ShippingFlatRate.IsNegative() {
		return fmt.Errorf("SHIPPING_FLAT_RATE must not be negative, got %s", c.ShippingFlatRate)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	if c.Pages.Products < 1 || c.Pages.Category < 1 || c.Pages.Orders < 1 ||
		c.Pages.Admin < 1 || c.Pages.Wishlist < 1 || c.Pages.Visible < 1 {
		return fmt.Errorf("page sizes must be positive")
	}
	return nil
}
