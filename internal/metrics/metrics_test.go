package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	Register()
}

func TestCountersAccumulate(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/rooms"))
	IncHTTP("/api/v1/rooms")
	IncHTTP("/api/v1/rooms")
	after := testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/rooms"))
	if after-before != 2 {
		t.Fatalf("expected +2 http requests, got %v", after-before)
	}

	before = testutil.ToFloat64(syncOutcomes.WithLabelValues("create_booking", "succeeded"))
	IncSyncAttempt("create_booking")
	IncSyncOutcome("create_booking", "succeeded")
	after = testutil.ToFloat64(syncOutcomes.WithLabelValues("create_booking", "succeeded"))
	if after-before != 1 {
		t.Fatalf("expected +1 succeeded outcome, got %v", after-before)
	}
}

func TestPendingGauge(t *testing.T) {
	SetPendingOps(7)
	if v := testutil.ToFloat64(pendingOps); v != 7 {
		t.Fatalf("expected gauge 7, got %v", v)
	}
	SetPendingOps(0)
	if v := testutil.ToFloat64(pendingOps); v != 0 {
		t.Fatalf("expected gauge 0, got %v", v)
	}
}
