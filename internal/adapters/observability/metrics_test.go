package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"petotel/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample per family so they show up in the exposition
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("liteapi", "hotel", 200, 30*time.Millisecond)
	observability.ObservePetPolicy("listing", "", true)
	observability.ObserveCheckout("details")
	observability.ObserveBooking("confirmed")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"petotel_http_requests_total",
		"petotel_external_requests_total",
		`petotel_pet_policy_decisions_total{pet_friendly="true",source="none",view="listing"}`,
		`petotel_checkout_transitions_total{stage="details"}`,
		`petotel_bookings_total{outcome="confirmed"}`,
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestServe_ExposesGivenRegistry(t *testing.T) {
	t.Setenv("METRICS_ADDR", "")
	if srv := observability.Serve(observability.InitRegistry()); srv != nil {
		t.Fatalf("expected no server without METRICS_ADDR")
	}

	t.Setenv("METRICS_ADDR", "127.0.0.1:0")
	reg := observability.InitRegistry()
	srv := observability.Serve(reg)
	if srv == nil {
		t.Fatal("expected a metrics server")
	}
	t.Cleanup(func() { _ = srv.Close() })

	observability.ObserveBooking("invalid")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	out := rr.Body.String()
	if rr.Code != http.StatusOK || !strings.Contains(out, `petotel_bookings_total{outcome="invalid"}`) {
		t.Fatalf("app metrics missing from /metrics: %d\n%s", rr.Code, out)
	}
	// the default registry carries go_* collectors; ours does not
	if strings.Contains(out, "go_goroutines") {
		t.Fatalf("/metrics serves the default registry")
	}
}
