package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for dry-period analysis.
type Metrics struct {
	AnalysesRun      *prometheus.CounterVec // labels: mode={a,l}
	AnalysisDuration prometheus.Histogram
	DryPeriodsFound  prometheus.Histogram
	LongestDryPeriod prometheus.Gauge

	// Loader metrics.
	MeasurementsLoaded *prometheus.CounterVec // labels: source={json,sqlite,kafka}
	LoadErrors         *prometheus.CounterVec // labels: source={json,sqlite,kafka}
	LoadDuration       *prometheus.HistogramVec
}

// NewMetrics creates and registers all analysis metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.AnalysesRun,
		m.AnalysisDuration,
		m.DryPeriodsFound,
		m.LongestDryPeriod,
		m.MeasurementsLoaded,
		m.LoadErrors,
		m.LoadDuration,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics that are not registered anywhere,
// for one-shot commands that never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "analyses_total",
			Help:      "Dry-period analyses run, by rainfall mode.",
		}, []string{"mode"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a load-analyze-rank cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		DryPeriodsFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "dry_periods_found",
			Help:      "Number of dry periods produced per analysis.",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000, 2500},
		}),
		LongestDryPeriod: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall",
			Name:      "longest_dry_period_days",
			Help:      "Length of the longest dry period in the most recent analysis.",
		}),
		MeasurementsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "measurements_loaded_total",
			Help:      "Measurements read from the data source.",
		}, []string{"source"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "load_errors_total",
			Help:      "Failed attempts to load the data source.",
		}, []string{"source"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "load_duration_seconds",
			Help:      "Time spent loading measurements from the data source.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"source"}),
	}
}
