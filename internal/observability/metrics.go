package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storm_hail"

// Metrics holds the Prometheus counters and histograms for hail retrievals.
type Metrics struct {
	Retrievals        *prometheus.CounterVec // labels: method, outcome={success,invalid,insufficient,error}
	Advisories        *prometheus.CounterVec // labels: code
	RetrievalDuration prometheus.Histogram
	SweepsPerVolume   prometheus.Histogram
	ValidSHICells     prometheus.Histogram

	// Product summary publishing.
	ProductsPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all retrieval metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.Retrievals,
		m.Advisories,
		m.RetrievalDuration,
		m.SweepsPerVolume,
		m.ValidSHICells,
		m.ProductsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		Retrievals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrievals_total",
			Help:      help("Hail retrievals by MESH method and outcome."),
		}, []string{"method", "outcome"}),
		Advisories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisories_total",
			Help:      help("Advisories attached to successful retrievals, by code."),
		}, []string{"code"}),
		RetrievalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      help("Duration of a complete hail retrieval."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SweepsPerVolume: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweeps_per_volume",
			Help:      help("Number of sweeps in each retrieved volume."),
			Buckets:   []float64{2, 3, 5, 8, 10, 12, 15, 20},
		}),
		ValidSHICells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "valid_shi_cells",
			Help:      help("Number of finite SHI cells per retrieval."),
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		ProductsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_published_total",
			Help:      help("Product summaries written to the sink topic."),
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Product summaries that failed to publish."),
		}),
	}
}
