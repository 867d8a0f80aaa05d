package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-sales-analytics/docs"
	"go-sales-analytics/internal/api/handler"
	"go-sales-analytics/internal/metrics"
	"go-sales-analytics/pkg/router"
)

// RegisterRoutes mounts the dashboard API, health, metrics and swagger endpoints
func RegisterRoutes(r *router.Router, h *handler.DashboardHandler) {
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/datasets", h.UploadDataset)
		r.Get("/datasets/current", h.CurrentDataset)

		r.Get("/dashboard/filters", h.Filters)
		r.Get("/dashboard/kpis", h.KPIs)
		r.Get("/dashboard/charts", h.Charts)

		r.Get("/records", h.Records)
		r.Get("/aggregate", h.Aggregate)
	})
}
