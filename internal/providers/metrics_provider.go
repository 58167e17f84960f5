package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tolicodes/playbuddy-sub001/internal/models"
	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncEvaluationsTotal(result string)
	IncPopupShown(id string)
	IncManualFetchErrors()
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	evaluationsTotal    *prometheus.CounterVec
	popupsShown         *prometheus.CounterVec
	manualFetchErrors   prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncEvaluationsTotal(result string) {
	m.evaluationsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncPopupShown(id string) {
	m.popupsShown.WithLabelValues(id).Inc()
}

func (m *MetricsProvider) IncManualFetchErrors() {
	m.manualFetchErrors.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, catalog *models.Catalog) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "popupd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "popupd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "popupd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "popupd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "popupd_persistence_duration_seconds",
			Help:    "Duration of state persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		evaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "popupd_evaluations_total",
			Help: "Queue evaluations by result (hit, miss, forced)",
		}, []string{"result"}),

		popupsShown: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "popupd_popups_shown_total",
			Help: "Popups recorded as shown, per popup id",
		}, []string{"id"}),

		manualFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "popupd_manual_fetch_errors_total",
			Help: "Failed manual popup source fetches",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "popupd_catalog_size",
		Help: "Number of popups in the catalog",
	}, func() float64 {
		return float64(catalog.Len())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncEvaluationsTotal(_ string)                     {}
func (n *noopMetrics) IncPopupShown(_ string)                           {}
func (n *noopMetrics) IncManualFetchErrors()                            {}
