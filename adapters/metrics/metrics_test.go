package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lionscafe/api/adapters/metrics"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if m.RequestsInFlight == nil {
		t.Error("RequestsInFlight is nil")
	}
	if m.AuthFailures == nil {
		t.Error("AuthFailures is nil")
	}
	if m.RateLimitHits == nil {
		t.Error("RateLimitHits is nil")
	}
	if m.OrdersCreated == nil {
		t.Error("OrdersCreated is nil")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
}

func TestCountersGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RequestsTotal.WithLabelValues("GET", "/api/menu/items", "200").Inc()
	m.RateLimitHits.WithLabelValues("strict").Add(3)
	m.OrdersCreated.WithLabelValues("takeaway").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"cafeapi_requests_total",
		"cafeapi_rate_limit_hits_total",
		"cafeapi_orders_created_total",
	} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestHandlerServesOwnRegistry(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	m.RequestsTotal.WithLabelValues("GET", "/health", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics handler status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cafeapi_requests_total") {
		t.Errorf("handler output missing cafeapi_requests_total")
	}
}

func TestNewIsolatedRegistries(t *testing.T) {
	// Two collectors in one process must not collide; each carries its
	// own registry.
	a := metrics.New()
	b := metrics.New()

	if a.Registry() == b.Registry() {
		t.Fatal("collectors share a registry")
	}

	a.ReservationsCreated.Inc()
	families, err := b.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "cafeapi_reservations_created_total" {
			for _, metric := range f.GetMetric() {
				if metric.GetCounter().GetValue() != 0 {
					t.Error("increment leaked across registries")
				}
			}
		}
	}
}
