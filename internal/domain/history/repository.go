package history

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores the lending history read model
type Repository interface {
	// Append stores the event once; a repeated EventID yields ErrDuplicateEvent
	Append(ctx context.Context, event *Event) error
	ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*Event, error)
	CountByMember(ctx context.Context, memberID uuid.UUID) (int64, error)
}

// ErrDuplicateEvent indicates the event was already recorded
type ErrDuplicateEvent struct {
	EventID string
}

func (e ErrDuplicateEvent) Error() string {
	return "duplicate lending event: " + e.EventID
}

// Is matches any ErrDuplicateEvent when the target EventID is empty
func (e ErrDuplicateEvent) Is(target error) bool {
	t, ok := target.(ErrDuplicateEvent)
	if !ok {
		return false
	}
	return t.EventID == "" || t.EventID == e.EventID
}
