// Package v1 holds the event envelope shared by the outbox writer, the relay
// and downstream consumers.
package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the versioned event envelope. Fields are append-only; consumers
// key on EventType and SchemaVersion.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}
