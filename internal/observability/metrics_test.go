package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEntitlement_Increments(t *testing.T) {
	c := entitlementDecisions.WithLabelValues("pitch_view", OutcomeConsumed)
	before := testutil.ToFloat64(c)
	RecordEntitlement("pitch_view", OutcomeConsumed)
	RecordEntitlement("pitch_view", OutcomeConsumed)
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Fatalf("delta = %v, want 2", got)
	}
}

func TestRecordNotification_Increments(t *testing.T) {
	c := notifications.WithLabelValues("new_message", "sent")
	before := testutil.ToFloat64(c)
	RecordNotification("new_message", "sent")
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Fatalf("delta = %v, want 1", got)
	}
}

func TestObserveOutbound_LabelsOutcome(t *testing.T) {
	start := time.Now().Add(-10 * time.Millisecond)
	ObserveOutbound("apple-test", start, nil)
	ObserveOutbound("apple-test", start, errors.New("boom"))

	if n := testutil.CollectAndCount(outboundLatency, "caerus_outbound_request_duration_seconds"); n < 2 {
		t.Fatalf("expected ok and error series, got %d", n)
	}
}
