package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes of payment provider orchestration.
type CheckoutMetrics struct {
	duration        *prometheus.HistogramVec
	sessions        *prometheus.CounterVec
	providerFailure *prometheus.CounterVec
	degraded        *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout orchestration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout sessions and payment intents by flow and outcome.",
	}, []string{"flow", "outcome"})
	providerFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_provider_failures_total",
		Help: "Failed payment provider calls by call name.",
	}, []string{"call"})
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_degraded_total",
		Help: "Checkouts that proceeded without a requested discount or tax rate.",
	}, []string{"kind"})
	reg.MustRegister(duration, sessions, providerFailure, degraded)
	return &CheckoutMetrics{
		duration:        duration,
		sessions:        sessions,
		providerFailure: providerFailure,
		degraded:        degraded,
	}
}

// ObserveDuration records the duration for the named flow.
func (c *CheckoutMetrics) ObserveDuration(flow string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(flow)).Observe(duration.Seconds())
}

// IncSession increments the session counter for the named flow and outcome.
func (c *CheckoutMetrics) IncSession(flow, outcome string) {
	if c == nil || c.sessions == nil {
		return
	}
	c.sessions.WithLabelValues(normalizeLabel(flow), normalizeLabel(outcome)).Inc()
}

// IncProviderFailure increments the failure counter for the named provider call.
func (c *CheckoutMetrics) IncProviderFailure(call string) {
	if c == nil || c.providerFailure == nil {
		return
	}
	c.providerFailure.WithLabelValues(normalizeLabel(call)).Inc()
}

// IncDegraded increments the degraded checkout counter for the given kind.
func (c *CheckoutMetrics) IncDegraded(kind string) {
	if c == nil || c.degraded == nil {
		return
	}
	c.degraded.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
