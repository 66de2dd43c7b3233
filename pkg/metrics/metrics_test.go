package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.ObserveDuration("expectations", 250*time.Millisecond)
	m.IncSuccess("expectations")
	m.IncFailure("")

	if got := testutil.ToFloat64(m.success.WithLabelValues("expectations")); got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty job label to normalize to unknown, got %f", got)
	}
	if count := testutil.CollectAndCount(m.duration); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}

func TestIngestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestMetrics(reg)
	m.Add(OutcomeStored, 3)
	m.Add(OutcomeDuplicate, 1)
	m.Add(OutcomeUnparseable, 0)

	if got := testutil.ToFloat64(m.records.WithLabelValues(OutcomeStored)); got != 3 {
		t.Fatalf("expected stored=3, got %f", got)
	}
	if got := testutil.ToFloat64(m.records.WithLabelValues(OutcomeDuplicate)); got != 1 {
		t.Fatalf("expected duplicate=1, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	var cron *CronJobMetrics
	cron.IncSuccess("x")
	NewCronJobMetrics(nil).ObserveDuration("x", time.Second)
	NewIngestMetrics(nil).Add(OutcomeStored, 1)
}
