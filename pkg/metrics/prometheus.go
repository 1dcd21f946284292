package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	estimates     *prometheus.CounterVec
	tenYearRisk   prometheus.Histogram
	interventions *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		estimates: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartcvd_estimates_total",
				Help: "Total number of risk estimates by 10-year risk band",
			},
			[]string{"band"},
		),
		tenYearRisk: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smartcvd_ten_year_risk_percent",
				Help:    "Distribution of estimated 10-year risk",
				Buckets: []float64{5, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
		interventions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartcvd_interventions_selected_total",
				Help: "Total number of times an intervention or add-on was selected",
			},
			[]string{"id"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartcvd_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartcvd_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEstimate records one baseline estimate.
func (r *Recorder) RecordEstimate(tenYear float64) {
	r.estimates.WithLabelValues(Band(tenYear)).Inc()
	r.tenYearRisk.Observe(tenYear)
}

// RecordIntervention records a selected intervention or add-on.
func (r *Recorder) RecordIntervention(id string) {
	r.interventions.WithLabelValues(id).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Band buckets a 10-year risk percentage into the usual clinical bands.
func Band(tenYear float64) string {
	switch {
	case tenYear < 10:
		return "low"
	case tenYear < 20:
		return "moderate"
	case tenYear < 30:
		return "high"
	default:
		return "very_high"
	}
}
