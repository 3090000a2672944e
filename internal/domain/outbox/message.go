package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/shared"
)

// Message stores a lending event for reliable publishing after the commit
// of the unit of work that produced it
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	EventType     shared.EventType    `json:"event_type"`
	MemberID      uuid.UUID           `json:"member_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *history.Event) (*Message, error) {
	eventID, err := uuid.Parse(event.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", event.EventID, err)
	}
	memberID, err := uuid.Parse(event.MemberID)
	if err != nil {
		return nil, fmt.Errorf("invalid member id %q: %w", event.MemberID, err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:   eventID,
		EventType: event.Type,
		MemberID:  memberID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

// ExhaustedRetries reports whether another failed attempt should give up on the message
func (m *Message) ExhaustedRetries(maxAttempts int) bool {
	return m.Attempts+1 >= maxAttempts
}

// GetEvent decodes the lending event from the payload
func (m *Message) GetEvent() (*history.Event, error) {
	var event history.Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
