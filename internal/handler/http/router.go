package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/checkout"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/health"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/middleware"
)

const serviceName = "storefront"

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Sessions  Sessions
	Catalog   catalog.Catalog
	Pricing   checkout.Pricing
	Confirmer checkout.OrderConfirmer
	Health    *health.Handler
}

// Options tune the middleware stack.
type Options struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	CatalogMaxAge  int

	// PprofAllowedCIDRs enables /debug/pprof/ for these networks. Empty
	// leaves it unmounted.
	PprofAllowedCIDRs []string
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		CORS:           middleware.DefaultCORSConfig(),
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		RequestTimeout: 30 * time.Second,
		CatalogMaxAge:  60,
	}
}

// NewRouter creates a chi router with all storefront routes registered. ctx
// bounds the rate limiter's background eviction.
func NewRouter(ctx context.Context, deps Deps, logger *slog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(opts.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(opts.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if len(opts.PprofAllowedCIDRs) > 0 {
		middleware.RegisterPprof(r, opts.PprofAllowedCIDRs, logger)
	}

	limit := middleware.RateLimit(ctx, opts.RateLimitRPS, opts.RateLimitBurst, logger)

	catalogHandler := NewCatalogHandler(deps.Catalog, logger)

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(middleware.RequestLogger(logger))
		r.Use(limit)
		r.Use(middleware.CacheControl(opts.CatalogMaxAge))

		r.Get("/", catalogHandler.ListItems)
		r.Get("/{id}", catalogHandler.GetItem)
	})

	// Client-scoped endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.ClientID())
		r.Use(middleware.RequestLogger(logger))
		r.Use(limit)
		r.Use(ContentTypeJSON)

		cartHandler := NewCartHandler(deps.Sessions, deps.Catalog, logger)
		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/toggle", cartHandler.ToggleOpen)
			r.Put("/step", cartHandler.SetStep)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{lineId}", cartHandler.UpdateItemQuantity)
			r.Patch("/items/{lineId}/options", cartHandler.UpdateItemOptions)
			r.Delete("/items/{lineId}", cartHandler.RemoveItem)
		})

		wishlistHandler := NewWishlistHandler(deps.Sessions, deps.Catalog, logger)
		r.Route("/api/v1/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.GetWishlist)
			r.Delete("/", wishlistHandler.ClearWishlist)

			r.Post("/items", wishlistHandler.AddItem)
			r.Get("/items/{itemId}", wishlistHandler.GetItem)
			r.Delete("/items/{itemId}", wishlistHandler.RemoveItem)
			r.Post("/items/{itemId}/toggle", wishlistHandler.ToggleItem)
			r.Post("/items/{itemId}/move-to-cart", wishlistHandler.MoveToCart)
		})

		checkoutHandler := NewCheckoutHandler(deps.Sessions, deps.Pricing, deps.Confirmer, logger)
		r.Route("/api/v1/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetCheckout)
			r.Post("/next", checkoutHandler.Next)
			r.Post("/back", checkoutHandler.Back)
			r.Post("/orders", checkoutHandler.PlaceOrder)
		})
	})

	return r
}
