package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncSession("order", "success")
	m.IncSession("order", "success")
	m.IncSession("Item Intent", "provider_error")
	m.IncProviderFailure("create_coupon")
	m.IncDegraded("discount")
	m.ObserveDuration("order", 150*time.Millisecond)

	if got := testutil.ToFloat64(m.sessions.WithLabelValues("order", "success")); got != 2 {
		t.Fatalf("expected 2 successful order sessions, got %v", got)
	}
	if got := testutil.ToFloat64(m.sessions.WithLabelValues("item_intent", "provider_error")); got != 1 {
		t.Fatalf("expected normalized flow label, got %v", got)
	}
	if got := testutil.ToFloat64(m.providerFailure.WithLabelValues("create_coupon")); got != 1 {
		t.Fatalf("expected 1 provider failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.degraded.WithLabelValues("discount")); got != 1 {
		t.Fatalf("expected 1 degraded checkout, got %v", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.IncSession("order", "success")
	m.IncProviderFailure("create_tax_rate")
	m.IncDegraded("tax")
	m.ObserveDuration("order", time.Second)

	empty := NewCheckoutMetrics(nil)
	empty.IncSession("order", "success")
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel("  Create Coupon "); got != "create_coupon" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("unexpected label %q", got)
	}
}
