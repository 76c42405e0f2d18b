package events_test

import (
	"context"
	"testing"

	"petotel/internal/adapters/events"
)

func TestNop_Publish(t *testing.T) {
	var p events.Nop
	if err := p.Publish(context.Background(), "booking.confirmed", map[string]string{"bookingId": "BK-1"}); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	if _, err := events.NewNATSPublisher("nats://127.0.0.1:1"); err == nil {
		t.Fatalf("expected connect error")
	}
}
