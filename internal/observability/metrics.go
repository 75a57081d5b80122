package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the depth pipeline.
type Metrics struct {
	SamplesParsed   prometheus.Counter
	SamplesDropped  prometheus.Counter
	FormatErrors    prometheus.Counter
	LoadErrors      *prometheus.CounterVec // labels: loader={file,kafka}
	DailyAggregates prometheus.Gauge
	LatestDepth     prometheus.Gauge
	PipelineRunning prometheus.Gauge
	LastRunSuccess  prometheus.Gauge

	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SamplesParsed,
		m.SamplesDropped,
		m.FormatErrors,
		m.LoadErrors,
		m.DailyAggregates,
		m.LatestDepth,
		m.PipelineRunning,
		m.LastRunSuccess,
		m.RunDuration,
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
		SamplesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "depth_etl",
			Name:      "samples_parsed_total",
			Help:      "Total samples parsed from sensor logs.",
		}),
		SamplesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "depth_etl",
			Name:      "samples_dropped_total",
			Help:      "Total samples discarded by the outlier filter.",
		}),
		FormatErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "depth_etl",
			Name:      "format_errors_total",
			Help:      "Total runs aborted by a malformed log row.",
		}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "depth_etl",
			Name:      "load_errors_total",
			Help:      "Failed report load attempts by loader.",
		}, []string{"loader"}),
		DailyAggregates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "depth_etl",
			Name:      "daily_aggregates",
			Help:      "Number of daily aggregates in the latest report.",
		}),
		LatestDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "depth_etl",
			Name:      "latest_daily_depth_cm",
			Help:      "Mean depth of the most recent day in the latest report.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "depth_etl",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress.",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "depth_etl",
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time of the last successful pipeline run.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "depth_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
