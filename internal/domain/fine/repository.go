package fine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines fine persistence operations
type Repository interface {
	Create(ctx context.Context, fine *Fine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Fine, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
	HasUnpaidByMember(ctx context.Context, memberID uuid.UUID) (bool, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*Fine, error)
	List(ctx context.Context, limit, offset int) ([]*Fine, error)

	// LockForUpdate reads the fine holding a row lock until the surrounding transaction ends
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Fine, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrFineNotFound indicates missing fine
type ErrFineNotFound struct {
	FineID uuid.UUID
}

func (e ErrFineNotFound) Error() string {
	return "fine not found: " + e.FineID.String()
}

// Is matches any ErrFineNotFound when the target FineID is empty
func (e ErrFineNotFound) Is(target error) bool {
	t, ok := target.(ErrFineNotFound)
	if !ok {
		return false
	}
	if t.FineID == uuid.Nil {
		return true
	}
	return e.FineID == t.FineID
}
