package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// Services groups the use cases the router exposes.
type Services struct {
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Wishlist *service.WishlistService
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	Account  *service.AccountService
	Admin    *service.AdminService
	Audit    *service.AuditService
}

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	ValidateToken  middleware.TokenValidator
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	CatalogMaxAge  int
	PprofEnabled   bool
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all storefront routes registered. ctx
// bounds background work owned by the router, such as the rate limiter's
// visitor cleanup.
func NewRouter(
	ctx context.Context,
	svcs Services,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	catalog := NewCatalogHandler(svcs.Catalog, logger)
	cart := NewCartHandler(svcs.Cart, logger)
	wishlist := NewWishlistHandler(svcs.Wishlist, logger)
	orders := NewOrderHandler(svcs.Checkout, svcs.Orders, logger)
	account := NewAccountHandler(svcs.Account, logger)
	admin := NewAdminHandler(svcs.Admin, svcs.Audit, logger)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}
		r.Use(ContentTypeJSON)

		// Public pages. A valid token personalizes them but is not required.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.ValidateToken))
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/products", catalog.ListProducts)
			r.Get("/products/{id}", catalog.GetProduct)
			r.Get("/categories/{category}/products", catalog.CategoryProducts)
		})

		// Public forms.
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Post("/auth/register", account.Register)
			r.Post("/auth/reset-password", account.ResetPassword)
			r.Post("/contact", account.Contact)
		})

		// Signed-in shoppers.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.ValidateToken))
			r.Use(middleware.RequireRole(middleware.RoleUser, middleware.RoleAdmin))
			r.Use(middleware.NoStore)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.GetCart)
				r.Post("/items", cart.AddItem)
				r.Put("/items/{productId}", cart.UpdateItemQuantity)
				r.Delete("/items/{productId}", cart.RemoveItem)
				r.Post("/items/{productId}/increment", cart.Increment)
				r.Post("/items/{productId}/decrement", cart.Decrement)
				r.Get("/items/{productId}/presence", cart.Presence)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlist.GetWishlist)
				r.Post("/{productId}/toggle", wishlist.Toggle)
				r.Get("/{productId}/presence", wishlist.Presence)
			})

			r.Get("/checkout", orders.CheckoutSummary)
			r.Post("/checkout", orders.PlaceOrder)

			r.Get("/orders", orders.ListOrders)
			r.Get("/orders/{id}", orders.GetOrder)

			// Administrators.
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(middleware.RoleAdmin))

				r.Get("/products", admin.ListProducts)
				r.Post("/products", admin.CreateProduct)
				r.Put("/products/{id}", admin.UpdateProduct)
				r.Delete("/products/{id}", admin.DeleteProduct)

				r.Get("/users", admin.ListUsers)
				r.Get("/users/{id}", admin.GetUser)

				r.Get("/orders", admin.ListOrders)
				r.Put("/orders/{id}/status", admin.UpdateOrderStatus)

				r.Get("/audit", admin.ListAudit)
			})
		})
	})

	return r
}
