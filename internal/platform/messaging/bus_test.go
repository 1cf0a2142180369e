package messaging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	eventsv1 "agora/contracts/gen/events/v1"
)

func TestEventBusDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus([]string{"localhost:9092"}, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan eventsv1.Envelope, 1)
	if err := bus.Subscribe(ctx, "vote.cast", "tally-audit", func(_ context.Context, event eventsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "vote.cast", eventsv1.Envelope{EventID: "evt-1", EventType: "vote.cast"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "evt-1" {
			t.Fatalf("unexpected event %q", event.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event was not delivered")
	}
}

func TestEventBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewEventBus(nil, nil)
	if err := bus.Publish(context.Background(), "article.phase_changed", eventsv1.Envelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
