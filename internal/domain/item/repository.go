package item

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines item persistence operations
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, limit, offset int) ([]*Item, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	// LockForUpdate reads the item holding a row lock until the surrounding transaction ends
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Item, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrItemNotFound indicates missing item
type ErrItemNotFound struct {
	ItemID uuid.UUID
}

func (e ErrItemNotFound) Error() string {
	return "item not found: " + e.ItemID.String()
}

// Is matches any ErrItemNotFound when the target ItemID is empty
func (e ErrItemNotFound) Is(target error) bool {
	t, ok := target.(ErrItemNotFound)
	if !ok {
		return false
	}
	if t.ItemID == uuid.Nil {
		return true
	}
	return e.ItemID == t.ItemID
}
