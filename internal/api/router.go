// Package api provides the HTTP API for EcoBalance.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/api/handler"
	"github.com/ecobalance/ecobalance/internal/api/middleware"
	"github.com/ecobalance/ecobalance/internal/app"
	"github.com/ecobalance/ecobalance/internal/metrics"
	"github.com/ecobalance/ecobalance/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	App         *app.App
	Registry    *resilience.Registry

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	RequireTLS     bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ecobalance-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(corsHandler(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.App, cfg.Registry)
	citiesHandler := handler.NewCitiesHandler(cfg.App)
	viewsHandler := handler.NewViewsHandler(cfg.App)
	controlHandler := handler.NewControlHandler(cfg.App)

	refreshRateLimit := middleware.RateLimitByIP(middleware.RefreshRateLimit)
	demoRateLimit := middleware.RateLimitByIP(middleware.DemoRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	ready := handler.RequireReady(cfg.App)
	loaded := handler.RequireData(cfg.App)
	module := func(name string) func(http.Handler) http.Handler {
		return handler.RequireModule(cfg.App, name)
	}
	a := cfg.App

	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Banner and flags stay reachable while the app is failed so the
		// client can show the message and operators can switch features.
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/banner", controlHandler.GetBanner)
			r.Delete("/banner", controlHandler.DismissBanner)
			r.Get("/flags", controlHandler.ListFlags)
			r.With(middleware.RequireJSON).Put("/flags", controlHandler.PutFlags)
		})

		// Each view is gated on its own module, so a failed start keeps
		// serving whatever initialized.
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)

			r.Route("/cities", func(r chi.Router) {
				r.With(loaded).Get("/", citiesHandler.ListCities)
				r.With(loaded).Get("/{id}", citiesHandler.GetCity)
				r.With(module(a.Detail().Name())).Post("/{id}/select", citiesHandler.SelectCity)
			})
			r.With(module(a.Detail().Name())).Get("/detail", citiesHandler.GetDetail)
			r.With(module(a.Detail().Name())).Delete("/detail", citiesHandler.CloseDetail)

			r.With(module(a.Dashboard().Name())).Get("/dashboard", viewsHandler.Dashboard)
			r.With(module(a.Charts().Name())).Get("/charts", viewsHandler.ChartIndex)
			r.With(module(a.Charts().Name())).Get("/charts/{kind}.svg", viewsHandler.ChartImage)
			r.With(module(a.Comparison().Name())).Get("/compare", viewsHandler.Compare)
			r.With(module(a.Comparison().Name())).Get("/compare/options", viewsHandler.CompareOptions)
			r.With(module(a.Sources().Name())).Get("/sources", viewsHandler.Sources)
			r.With(module(a.Sources().Name())).Get("/methodology", viewsHandler.Methodology)

			r.With(module(a.Navigator().Name())).Get("/navigation", controlHandler.GetNavigation)
			r.With(module(a.Navigator().Name()), middleware.RequireJSON).Put("/navigation", controlHandler.PutNavigation)
		})

		r.With(module(a.Sources().Name()), demoRateLimit).Post("/sources/demo", viewsHandler.Demo)
		r.With(ready, refreshRateLimit).Post("/refresh", controlHandler.Refresh)
	})

	return r
}

func corsHandler(origins []string) func(next http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.HeaderRequestID, "traceparent"},
		ExposedHeaders: []string{middleware.HeaderRequestID, "Retry-After"},
		MaxAge:         600,
	}).Handler
}
