package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for evaluation cycles.
type Metrics struct {
	Evaluations        *prometheus.CounterVec // labels: tier={alto,médio,baixo,unknown}
	ValidationFailures *prometheus.CounterVec // labels: reason={empty_input,unknown_crop,invalid_city}
	RecordsEmitted     prometheus.Counter
	SinkErrors         *prometheus.CounterVec // labels: sink

	// Weather provider metrics.
	WeatherFetchErrors prometheus.Counter
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss,expired}
	WeatherAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Evaluations,
		m.ValidationFailures,
		m.RecordsEmitted,
		m.SinkErrors,
		m.WeatherFetchErrors,
		m.WeatherCache,
		m.WeatherAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pest_risk",
			Name:      "evaluations_total",
			Help:      "Completed evaluations by resulting risk tier.",
		}, []string{"tier"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pest_risk",
			Name:      "validation_failures_total",
			Help:      "Rejected crop or city inputs by reason.",
		}, []string{"reason"}),
		RecordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pest_risk",
			Name:      "records_emitted_total",
			Help:      "Alert records accepted by at least one report sink.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pest_risk",
			Name:      "sink_errors_total",
			Help:      "Report sink failures by sink.",
		}, []string{"sink"}),
		WeatherFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pest_risk",
			Name:      "weather_fetch_errors_total",
			Help:      "Failed weather lookups.",
		}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pest_risk",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pest_risk",
			Name:      "weather_api_duration_seconds",
			Help:      "OpenWeatherMap request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
