package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects supervisor-level Prometheus metrics.
type Recorder struct {
	queriesTotal    *prometheus.CounterVec
	toolFailures    *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	requestDuration prometheus.Histogram
}

// New creates a Recorder registered against the given registerer. Passing
// nil uses the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		queriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supervisor_queries_total",
				Help: "Total number of handled queries by resulting action",
			},
			[]string{"action"},
		),
		toolFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supervisor_tool_failures_total",
				Help: "Total number of analysis tool failures",
			},
			[]string{"tool", "code"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "supervisor_tool_duration_seconds",
				Help:    "Duration of analysis tool calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		requestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "supervisor_request_duration_seconds",
				Help:    "End-to-end query handling duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordQuery records the terminal action of one handled query.
func (r *Recorder) RecordQuery(action string) {
	r.queriesTotal.WithLabelValues(action).Inc()
}

// RecordToolFailure records a failed analysis tool call by failure code.
func (r *Recorder) RecordToolFailure(tool, code string) {
	r.toolFailures.WithLabelValues(tool, code).Inc()
}

// RecordToolDuration records how long one analysis tool call took.
func (r *Recorder) RecordToolDuration(tool string, seconds float64) {
	r.toolDuration.WithLabelValues(tool).Observe(seconds)
}

// RecordRequestDuration records the end-to-end handling time of one query.
func (r *Recorder) RecordRequestDuration(seconds float64) {
	r.requestDuration.Observe(seconds)
}
