// metrics описывает prometheus-метрики харвестера.
// Метрики регистрируются в переданном Registerer, чтобы тесты могли
// использовать отдельный prometheus.NewRegistry().
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "harvester"

// Исходы одной попытки запроса.
const (
	OutcomeOK     = "ok"
	OutcomeError  = "error"
	OutcomeStatus = "bad_status"
	OutcomeAuth   = "auth"
)

// Исходы страницы при сборке результата.
const (
	PageDecoded   = "decoded"
	PageFailed    = "fetch_failed"
	PageMalformed = "malformed"
)

// Metrics — набор метрик пайплайна.
type Metrics struct {
	FetchAttempts *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	Pages         *prometheus.CounterVec
	Listings      prometheus.Counter
	Harvests      *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// New регистрирует метрики в reg. nil — prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	f := promauto.With(reg)

	return &Metrics{
		FetchAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Page fetch attempts by transport and outcome.",
		}, []string{"transport", "outcome"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single fetch attempt.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"transport"}),
		Pages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Result pages by outcome.",
		}, []string{"outcome"}),
		Listings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_total",
			Help:      "Decoded listings.",
		}),
		Harvests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "harvests_total",
			Help:      "Finished harvests by completeness.",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveAttempt фиксирует одну попытку запроса. Безопасен для nil.
func (m *Metrics) ObserveAttempt(transport, outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.FetchAttempts.WithLabelValues(transport, outcome).Inc()
	m.FetchDuration.WithLabelValues(transport).Observe(d.Seconds())
}

// ObservePage фиксирует исход страницы. Безопасен для nil.
func (m *Metrics) ObservePage(outcome string, listings int) {
	if m == nil {
		return
	}

	m.Pages.WithLabelValues(outcome).Inc()
	m.Listings.Add(float64(listings))
}

// ObserveHarvest фиксирует завершённый харвест. Безопасен для nil.
func (m *Metrics) ObserveHarvest(partial bool) {
	if m == nil {
		return
	}

	result := "complete"
	if partial {
		result = "partial"
	}

	m.Harvests.WithLabelValues(result).Inc()
}

// ObserveHTTP фиксирует один HTTP-запрос. Безопасен для nil.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}

	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
