package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/briannzioki/qwiksale-listings/internal/service"
	"github.com/briannzioki/qwiksale-listings/pkg/health"
	"github.com/briannzioki/qwiksale-listings/pkg/middleware"
)

const serviceName = "listings"

// RouterConfig carries the dependencies and settings the router needs.
type RouterConfig struct {
	ListingService *service.ListingService
	HealthHandler  *health.Handler
	CORS           middleware.CORSConfig
	// BrowseCacheMaxAge sets the Cache-Control max-age (seconds) on browse
	// responses; zero disables the header.
	BrowseCacheMaxAge int
	Logger            *slog.Logger
}

// NewRouter creates a chi router with all listings service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	// Operational endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	listingHandler := NewListingHandler(cfg.ListingService, cfg.Logger)

	// Browse endpoints, one per listing kind.
	r.Route("/api/v1/products", func(r chi.Router) {
		if cfg.BrowseCacheMaxAge > 0 {
			r.Use(middleware.CacheControl(cfg.BrowseCacheMaxAge))
		}
		r.Get("/", listingHandler.BrowseProducts)
	})

	r.Route("/api/v1/services", func(r chi.Router) {
		if cfg.BrowseCacheMaxAge > 0 {
			r.Use(middleware.CacheControl(cfg.BrowseCacheMaxAge))
		}
		r.Get("/", listingHandler.BrowseServices)
	})

	// Listing CRUD endpoints.
	r.Route("/api/v1/listings", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/{idOrSlug}", listingHandler.GetListing)
		r.Post("/", listingHandler.CreateListing)
		r.Put("/{id}", listingHandler.UpdateListing)
		r.Delete("/{id}", listingHandler.DeleteListing)
	})

	return r
}
