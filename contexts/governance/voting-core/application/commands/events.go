package commands

import (
	"encoding/json"
	"time"

	"agora/contexts/governance/voting-core/ports"
)

func newVotingEnvelope(
	eventID string,
	eventType string,
	articleID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Partitioned by article so tally and phase events keep their order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "voting-core",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "article_id",
		PartitionKey:     articleID,
		Data:             payload,
	}, nil
}
