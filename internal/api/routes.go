// Package api is the HTTP surface used in headless mode. It reads the flight
// store and drives the refresh scheduler.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/skytrack/internal/logger"
)

// Router assembles handlers and middleware.
type Router struct {
	handler    *Handler
	middleware *Middleware
	metrics    http.Handler
}

// NewRouter creates a Router. metricsHandler may be nil to omit /metrics.
func NewRouter(ctl Controller, view Viewer, metricsHandler http.Handler, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(ctl, view, log),
		middleware: NewMiddleware(log),
		metrics:    metricsHandler,
	}
}

// Routes returns the root handler.
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(router chi.Router) {
		router.Get("/flights", r.handler.GetFlights)
		router.Get("/flights/visible", r.handler.GetVisibleFlights)
		router.Get("/countries", r.handler.GetCountries)
		router.Get("/status", r.handler.GetStatus)

		router.Put("/region", r.handler.PutRegion)
		router.Delete("/region", r.handler.DeleteRegion)
		router.Put("/country", r.handler.PutCountry)

		router.Post("/suspend", r.handler.PostSuspend)
		router.Post("/resume", r.handler.PostResume)
		router.Post("/refresh", r.handler.PostRefresh)
	})

	router.Get("/healthz", r.handler.GetHealth)
	if r.metrics != nil {
		router.Method(http.MethodGet, "/metrics", r.metrics)
	}
	return router
}
