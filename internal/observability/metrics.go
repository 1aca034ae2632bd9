package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// flow ingest pipeline and its adapters.
type Metrics struct {
	ReadingsConsumed prometheus.Counter
	ReadingsProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Classification metrics.
	ZoneClassified *prometheus.CounterVec // label: zone={LOW,PRIME,CAUTION,BLOWN_OUT}

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// USGS site directory metrics.
	USGSRequests    *prometheus.CounterVec   // labels: method={site,discharge}, outcome={success,error,empty}
	USGSCache       *prometheus.CounterVec   // labels: method={site,discharge}, result={hit,miss}
	USGSAPIDuration *prometheus.HistogramVec // labels: method={site,discharge}
	USGSEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReadingsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salmonflow",
			Name:      "readings_consumed_total",
			Help:      "Total raw gauge readings read from the source topic.",
		}),
		ReadingsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salmonflow",
			Name:      "readings_produced_total",
			Help:      "Total enriched readings written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salmonflow",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "salmonflow",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		ZoneClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salmonflow",
			Name:      "zone_classified_total",
			Help:      "Readings classified per condition zone.",
		}, []string{"zone"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salmonflow",
			Name:      "batch_size",
			Help:      "Number of readings per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salmonflow",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		USGSRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salmonflow",
			Name:      "usgs_requests_total",
			Help:      "USGS Water Services requests by method and outcome.",
		}, []string{"method", "outcome"}),
		USGSCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salmonflow",
			Name:      "usgs_cache_total",
			Help:      "USGS directory cache lookups by method and result.",
		}, []string{"method", "result"}),
		USGSAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salmonflow",
			Name:      "usgs_api_duration_seconds",
			Help:      "USGS Water Services request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		USGSEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "salmonflow",
			Name:      "usgs_enabled",
			Help:      "1 when USGS site directory enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ReadingsConsumed,
		m.ReadingsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.ZoneClassified,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.USGSRequests,
		m.USGSCache,
		m.USGSAPIDuration,
		m.USGSEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReadingsConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "salmonflow", Name: "readings_consumed_total"}),
		ReadingsProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "salmonflow", Name: "readings_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "salmonflow", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "salmonflow", Name: "pipeline_running"}),
		ZoneClassified:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "salmonflow", Name: "zone_classified_total"}, []string{"zone"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "salmonflow", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "salmonflow", Name: "batch_processing_duration_seconds"}),
		USGSRequests:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "salmonflow", Name: "usgs_requests_total"}, []string{"method", "outcome"}),
		USGSCache:               prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "salmonflow", Name: "usgs_cache_total"}, []string{"method", "result"}),
		USGSAPIDuration:         prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "salmonflow", Name: "usgs_api_duration_seconds"}, []string{"method"}),
		USGSEnabled:             prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "salmonflow", Name: "usgs_enabled"}),
	}
}
