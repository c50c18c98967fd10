package middleware

import (
	"net/http"
	"time"

	"github.com/pribylovaa/go-maps-harvester/internal/metrics"
)

// Metrics считает запросы; метка route — шаблон маршрута chi,
// чтобы /listings/{id} не плодил серии по каждому id.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newRecorder(w)
			start := time.Now()
			next.ServeHTTP(rec, r)

			m.ObserveHTTP(r.Method, routePattern(r), rec.code(), time.Since(start))
		})
	}
}
