package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SplitMetrics tracks order-splitting outcomes.
type SplitMetrics struct {
	splits      *prometheus.CounterVec
	failures    *prometheus.CounterVec
	previews    prometheus.Counter
	transitions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewSplitMetrics registers the split metrics on the provided registerer.
func NewSplitMetrics(reg prometheus.Registerer) *SplitMetrics {
	if reg == nil {
		return &SplitMetrics{}
	}
	splits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_splits_total",
		Help: "Executed order splits by method.",
	}, []string{"method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_split_failures_total",
		Help: "Failed order split attempts by method.",
	}, []string{"method"})
	previews := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_split_previews_total",
		Help: "Generated split previews.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Accepted order status transitions.",
	}, []string{"to"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_split_duration_seconds",
		Help:    "Duration of split execution in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	reg.MustRegister(splits, failures, previews, transitions, duration)
	return &SplitMetrics{
		splits:      splits,
		failures:    failures,
		previews:    previews,
		transitions: transitions,
		duration:    duration,
	}
}

// IncSplit increments the executed split counter for the method.
func (m *SplitMetrics) IncSplit(method string) {
	if m == nil || m.splits == nil {
		return
	}
	m.splits.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncSplitFailure increments the failure counter for the method.
func (m *SplitMetrics) IncSplitFailure(method string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncPreview increments the preview counter.
func (m *SplitMetrics) IncPreview() {
	if m == nil || m.previews == nil {
		return
	}
	m.previews.Inc()
}

// IncTransition increments the transition counter for the target status.
func (m *SplitMetrics) IncTransition(to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// ObserveSplitDuration records how long a split execution took.
func (m *SplitMetrics) ObserveSplitDuration(method string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}
