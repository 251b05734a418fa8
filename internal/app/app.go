package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/backend"
	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/httputil"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error

	// background owns the cache sweeper, the rate limiter cleanup and the
	// invalidation consumer.
	background context.Context
	stop       context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	a.background, a.stop = context.WithCancel(context.Background())

	ok := false
	defer func() {
		if !ok {
			_ = a.closeResources()
		}
	}()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	// Read-through cache.
	store, err := a.newStore(ctx, healthHandler)
	if err != nil {
		return nil, err
	}
	viewCache := cache.New(store, cfg.CacheTTL, logger)

	// Backend client behind retries and a circuit breaker.
	breaker := httpclient.NewCircuitBreakerClient(httpclient.New(cfg.BackendHTTP), cfg.BackendBreaker, logger)
	client := backend.NewClient(cfg.BackendURL, breaker, logger)
	healthHandler.RegisterCritical("backend", client.Ping)
	logger.Info("backend client initialized", slog.String("url", cfg.BackendURL))

	// Admin audit log.
	var auditRepo repository.AuditRepository
	if cfg.AuditEnabled {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

		pool, err := database.NewPostgresPool(ctx, &cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool

		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "storefront"); err != nil {
			logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
		}

		auditRepo = postgres.NewAuditRepository(pool)
		healthHandler.RegisterNonCritical("postgres", pool.Ping)
	} else {
		logger.Warn("admin audit log disabled")
	}

	// Kafka: audit events out, invalidation events in.
	var auditPublisher service.AuditPublisher
	if cfg.KafkaEnabled() {
		a.producer = pkgkafka.NewProducer(cfg.Kafka, logger)
		auditPublisher = event.NewProducer(a.producer, logger)

		invalidator := event.NewConsumer(viewCache, logger)
		a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.KafkaGroupID,
			Topics:  event.Topics(),
		}, invalidator.Handle, logger)

		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka initialized", slog.Any("brokers", cfg.Kafka.Brokers))
	} else {
		logger.Warn("kafka disabled, cache relies on TTL expiry only")
	}

	// Build the service graph.
	policy := pricing.PolicyFor(cfg.ShippingFlatRate)
	audit := service.NewAuditService(auditRepo, auditPublisher, cfg.Pages, logger)
	svcs := handler.Services{
		Catalog:  service.NewCatalogService(client, viewCache, cfg.Pages, logger),
		Cart:     service.NewCartService(client, viewCache, policy, logger),
		Wishlist: service.NewWishlistService(client, viewCache, cfg.Pages, logger),
		Checkout: service.NewCheckoutService(client, viewCache, policy, logger),
		Orders:   service.NewOrderService(client, viewCache, cfg.Pages, logger),
		Account:  service.NewAccountService(client, viewCache, logger),
		Admin:    service.NewAdminService(client, viewCache, audit, cfg.Pages, logger),
		Audit:    audit,
	}

	httputil.SetLoginRedirect(cfg.LoginRedirectPath, cfg.LoginRedirectDelay)

	router := handler.NewRouter(a.background, svcs, healthHandler, handler.RouterConfig{
		ValidateToken:  middleware.HS256Validator(cfg.JWTSecret),
		CORS:           cfg.CORS,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CatalogMaxAge:  cfg.CatalogMaxAge,
		PprofEnabled:   cfg.PprofEnabled,
		PprofCIDRs:     cfg.PprofCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ok = true
	return a, nil
}

// newStore picks the cache backend named by CACHE_STORE.
func (a *App) newStore(ctx context.Context, h *health.Handler) (cache.Store, error) {
	if a.cfg.CacheStore == config.CacheStoreMemory {
		store := cache.NewMemoryStore()
		go store.Run(a.background, a.cfg.CacheSweepInterval)
		a.logger.Info("using in-process cache")
		return store, nil
	}

	rdb, err := database.NewRedisClient(ctx, a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.Redis.Addr()),
		slog.Int("db", a.cfg.Redis.DB),
	)

	store := cache.NewRedisStore(rdb, a.cfg.CacheKeyPrefix)
	// A Redis outage degrades to backend reads.
	h.RegisterNonCritical("redis", store.Ping)
	return store, nil
}

// Run starts the HTTP server and the invalidation consumer and blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if consumer := a.consumer; consumer != nil {
		go func() {
			if err := consumer.Start(a.background); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("invalidation consumer stopped", slog.String("error", err.Error()))
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Background workers (consumer, sweeper)
// 3. Tracer (flush pending spans from drained requests)
// 4. Kafka, Postgres and Redis connections
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.stop()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases connections opened by NewApp. It is safe to call
// on a partially initialized App.
func (a *App) closeResources() error {
	a.stop()

	var errs []error
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.consumer = nil
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.rdb = nil
	}
	return errors.Join(errs...)
}
