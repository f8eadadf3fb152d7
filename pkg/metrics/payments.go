package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment lifecycle activity.
type PaymentMetrics struct {
	transitions       *prometheus.CounterVec
	outOfPolicy       *prometheus.CounterVec
	mutationDuration  *prometheus.HistogramVec
	initializeFailure *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_status_transitions_total",
		Help: "Payment status transitions by from/to status.",
	}, []string{"from", "to"})
	outOfPolicy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_out_of_policy_overrides_total",
		Help: "Admin overrides that fall outside the transition table.",
	}, []string{"from", "to"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_mutation_duration_seconds",
		Help:    "Duration of admin payment mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
	initFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_initialize_failures_total",
		Help: "Gateway initialization failures by provider.",
	}, []string{"provider"})
	reg.MustRegister(transitions, outOfPolicy, duration, initFailure)
	return &PaymentMetrics{
		transitions:       transitions,
		outOfPolicy:       outOfPolicy,
		mutationDuration:  duration,
		initializeFailure: initFailure,
	}
}

// ObserveTransition counts a status transition.
func (p *PaymentMetrics) ObserveTransition(from, to string) {
	if p == nil || p.transitions == nil {
		return
	}
	p.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncOutOfPolicy counts an audited override outside the transition table.
func (p *PaymentMetrics) IncOutOfPolicy(from, to string) {
	if p == nil || p.outOfPolicy == nil {
		return
	}
	p.outOfPolicy.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveMutationDuration records the duration of the named admin action.
func (p *PaymentMetrics) ObserveMutationDuration(action string, duration time.Duration) {
	if p == nil || p.mutationDuration == nil {
		return
	}
	p.mutationDuration.WithLabelValues(normalizeLabel(action)).Observe(duration.Seconds())
}

// IncInitializeFailure counts a failed provider initialization.
func (p *PaymentMetrics) IncInitializeFailure(provider string) {
	if p == nil || p.initializeFailure == nil {
		return
	}
	p.initializeFailure.WithLabelValues(normalizeLabel(provider)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
