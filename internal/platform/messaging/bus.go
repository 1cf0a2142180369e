package messaging

import (
	"context"
	"log/slog"
	"sync"

	eventsv1 "agora/contracts/gen/events/v1"
)

// EventBus is the event bus adapter used by the worker outbox relay. It is an
// in-process publish/subscribe fan-out; the configured brokers are recorded
// for the external transport.
type EventBus struct {
	mu          sync.RWMutex
	brokers     []string
	subscribers map[string][]chan eventsv1.Envelope
	logger      *slog.Logger
}

func NewEventBus(brokers []string, logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{
		brokers:     append([]string(nil), brokers...),
		subscribers: make(map[string][]chan eventsv1.Envelope),
		logger:      logger,
	}
}

func (b *EventBus) Brokers() []string {
	return append([]string(nil), b.brokers...)
}

func (b *EventBus) Publish(ctx context.Context, topic string, event eventsv1.Envelope) error {
	b.mu.RLock()
	subs := append([]chan eventsv1.Envelope(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				"event", "bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
			)
		}
	}

	b.logger.Info("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
	)
	return nil
}

// Subscribe delivers events for topic to handler until ctx is cancelled.
func (b *EventBus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, eventsv1.Envelope) error,
) error {
	ch := make(chan eventsv1.Envelope, 128)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil {
					b.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *EventBus) removeSubscriber(topic string, target chan eventsv1.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan eventsv1.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
