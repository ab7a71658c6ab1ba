package models

import (
	"time"

	"github.com/google/uuid"
)

type OutboxKind string

const (
	OutboxEventCancelled OutboxKind = "event_cancelled"
)

// OutboxEntry is a pending notification. The series logic only enqueues;
// delivery is handled by a scheduled consumer outside this subsystem.
// Entries sharing a BatchKey are meant to be delivered as one message.
type OutboxEntry struct {
	ID          uuid.UUID  `json:"id"`
	BatchKey    string     `json:"batch_key"`
	EventID     uuid.UUID  `json:"event_id"`
	Kind        OutboxKind `json:"kind"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	ProcessedAt *time.Time `json:"processed_at"`
}
