package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "plume"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment pipeline and its lookups.
type Metrics struct {
	RequestsConsumed    prometheus.Counter
	AssessmentsProduced prometheus.Counter
	TransformErrors     prometheus.Counter
	SupersededDropped   prometheus.Counter
	SupersededAfterLoad prometheus.Counter
	PipelineRunning     prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Assessment output metrics.
	ImpactedReceptors prometheus.Histogram
	PlumeArea         prometheus.Histogram

	// External lookup metrics.
	LookupRequests    *prometheus.CounterVec   // labels: provider={nws,overpass}, outcome={success,error,empty}
	LookupCache       *prometheus.CounterVec   // labels: provider={nws,overpass}, result={hit,miss}
	LookupAPIDuration *prometheus.HistogramVec // labels: provider={nws,overpass}
	LookupEnabled     *prometheus.GaugeVec     // labels: provider={nws,overpass}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.RequestsConsumed,
		m.AssessmentsProduced,
		m.TransformErrors,
		m.SupersededDropped,
		m.SupersededAfterLoad,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ImpactedReceptors,
		m.PlumeArea,
		m.LookupRequests,
		m.LookupCache,
		m.LookupAPIDuration,
		m.LookupEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
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
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_consumed_total",
			Help:      help("Total release requests read from the source topic."),
		}),
		AssessmentsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_produced_total",
			Help:      help("Total assessments written to the sink topic."),
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      help("Total release requests that could not be parsed."),
		}),
		SupersededDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "superseded_assessments_total",
			Help:      help("Assessments discarded because a newer revision was already published."),
		}),
		SupersededAfterLoad: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "superseded_after_load_total",
			Help:      help("Assessments written to the sink while a newer revision was published concurrently."),
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 when the pipeline is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      help("Number of requests per batch extracted from Kafka."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      help("Duration of a complete batch extract-transform-load cycle."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ImpactedReceptors: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "impacted_receptors",
			Help:      help("Receptors inside the plume per assessment."),
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		PlumeArea: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plume_area_square_meters",
			Help:      help("Plume footprint area per assessment."),
			Buckets:   prometheus.ExponentialBuckets(1e4, 4, 8),
		}),
		LookupRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_requests_total",
			Help:      help("External lookup requests by provider and outcome."),
		}, []string{"provider", "outcome"}),
		LookupCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_cache_total",
			Help:      help("Lookup cache reads by provider and result."),
		}, []string{"provider", "result"}),
		LookupAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_api_duration_seconds",
			Help:      help("External lookup API request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		LookupEnabled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lookup_enabled",
			Help:      help("1 when a lookup provider is enabled, 0 otherwise."),
		}, []string{"provider"}),
	}
}
