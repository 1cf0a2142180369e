package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "agora/contexts/governance/voting-core/application"
	"agora/contexts/governance/voting-core/ports"
)

// OutboxRelay publishes vote and lifecycle events written by the ledger.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after the publish succeeds. It stops on the first failure so
// the next cycle picks up from the same row.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("voting outbox list failed",
			"event", "voting_outbox_list_failed",
			"module", "governance/voting-core",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		logger.Debug("voting outbox relay found no pending rows",
			"event", "voting_outbox_relay_noop",
			"module", "governance/voting-core",
			"layer", "worker",
			"batch_size", limit,
		)
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("voting outbox decode failed",
				"event", "voting_outbox_decode_failed",
				"module", "governance/voting-core",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("voting outbox publish failed",
				"event", "voting_outbox_publish_failed",
				"module", "governance/voting-core",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", event.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("voting outbox mark published failed",
				"event", "voting_outbox_mark_published_failed",
				"module", "governance/voting-core",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("voting outbox relay cycle completed",
		"event", "voting_outbox_relay_completed",
		"module", "governance/voting-core",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
