package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSplitMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSplitMetrics(reg)

	metrics.IncSplit("by_product")
	metrics.IncSplitFailure("by_product")
	metrics.IncPreview()
	metrics.IncTransition("completed")
	metrics.ObserveSplitDuration("by_product", 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "order_splits_total", "method", "by_product"); err != nil {
		t.Fatalf("fetch splits: %v", err)
	} else if got != 1 {
		t.Fatalf("expected splits=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_split_failures_total", "method", "by_product"); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_status_transitions_total", "to", "completed"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_split_duration_seconds", "method", "by_product"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestSplitMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewSplitMetrics(nil)
	metrics.IncSplit("manual")
	metrics.IncPreview()
	metrics.ObserveSplitDuration("manual", time.Second)
}
