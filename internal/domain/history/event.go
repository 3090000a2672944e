// Package history describes lending events as they are published and stored in
// the per-member lending history.
package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/shared"
)

// Event is a lending fact. It is the outbox payload, the Kafka message body and
// the history document, so identifiers are kept as strings for all three encodings.
type Event struct {
	EventID       string           `json:"event_id" bson:"event_id"`
	Type          shared.EventType `json:"type" bson:"type"`
	MemberID      string           `json:"member_id" bson:"member_id"`
	ItemID        string           `json:"item_id,omitempty" bson:"item_id,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	FineID        string           `json:"fine_id,omitempty" bson:"fine_id,omitempty"`
	Amount        string           `json:"amount,omitempty" bson:"amount,omitempty"`
	Status        string           `json:"status,omitempty" bson:"status,omitempty"`
	Detail        string           `json:"detail,omitempty" bson:"detail,omitempty"`
	CorrelationID string           `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at" bson:"occurred_at"`
	RecordedAt    *time.Time       `json:"recorded_at,omitempty" bson:"recorded_at,omitempty"`
}

// NewEvent creates an event of the given type about a member
func NewEvent(eventType shared.EventType, memberID uuid.UUID, occurredAt time.Time) *Event {
	return &Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		MemberID:   memberID.String(),
		OccurredAt: occurredAt.UTC(),
	}
}
