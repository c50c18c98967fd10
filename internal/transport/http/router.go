// http собирает HTTP API харвестера на chi.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-maps-harvester/internal/metrics"
	"github.com/pribylovaa/go-maps-harvester/internal/transport/http/handlers"
	"github.com/pribylovaa/go-maps-harvester/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger *slog.Logger
	// Timeout — дедлайн запросов чтения. На POST /harvests не действует:
	// харвест ограничен таймаутами браузера и отдельных загрузок.
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
	Metrics  *metrics.Metrics
	// Gatherer — источник для /metrics; nil — prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(opts.Logger),
		middleware.RequestID(), // до логирования
		middleware.Logging(opts.Logger),
		middleware.Metrics(opts.Metrics),
	)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := handlers.New(svc)

	root.Get("/livez", h.Livez)
	root.Get("/readyz", h.Readyz)
	root.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, opts.Timeout)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts.Timeout)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, timeout time.Duration) {
	// harvests
	r.Post("/harvests", h.CreateHarvest)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.Get("/harvests/{id}", h.GetHarvest)

		// listings
		r.Get("/listings", h.ListListings)
		r.Get("/listings/{id}", h.GetListing)
	})
}
