package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersAndIncrementsCounters(t *testing.T) {
	m := New()

	m.ActionsExecuted.WithLabelValues("sess-1", "Move").Inc()
	m.ActionsExecuted.WithLabelValues("sess-1", "Move").Inc()
	m.ActionsFailed.WithLabelValues("sess-1", "Attack").Inc()

	if got := testutil.ToFloat64(m.ActionsExecuted.WithLabelValues("sess-1", "Move")); got != 2 {
		t.Fatalf("expected ActionsExecuted to read back 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.ActionsFailed.WithLabelValues("sess-1", "Attack")); got != 1 {
		t.Fatalf("expected ActionsFailed to read back 1, got %v", got)
	}

	m.BusSubscribers.WithLabelValues("sess-1").Set(3)
	if got := testutil.ToFloat64(m.BusSubscribers.WithLabelValues("sess-1")); got != 3 {
		t.Fatalf("expected BusSubscribers gauge to read back 3, got %v", got)
	}
}
