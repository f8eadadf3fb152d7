package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilReceiverIsSafe(t *testing.T) {
	var m *PaymentMetrics
	m.ObserveTransition("pending", "completed")
	m.IncOutOfPolicy("failed", "completed")
	m.ObserveMutationDuration("verify", time.Second)
	m.IncInitializeFailure("stripe")
}

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPaymentMetrics(reg)

	m.ObserveTransition("pending", "completed")
	m.ObserveTransition("pending", "completed")
	m.IncOutOfPolicy("", "completed")

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("pending", "completed")); got != 2 {
		t.Fatalf("expected 2 transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.outOfPolicy.WithLabelValues("unknown", "completed")); got != 1 {
		t.Fatalf("expected 1 out-of-policy override, got %v", got)
	}
}
