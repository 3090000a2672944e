package member

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines member persistence operations
type Repository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	// AdjustFinesDue adds delta to fines_due, clamped at zero and rounded to cents,
	// and returns the stored value
	AdjustFinesDue(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)

	// LockForUpdate reads the member holding a row lock until the surrounding transaction ends
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Member, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrMemberNotFound indicates missing member
type ErrMemberNotFound struct {
	MemberID uuid.UUID
}

func (e ErrMemberNotFound) Error() string {
	return "member not found: " + e.MemberID.String()
}

// Is matches any ErrMemberNotFound when the target MemberID is empty
func (e ErrMemberNotFound) Is(target error) bool {
	t, ok := target.(ErrMemberNotFound)
	if !ok {
		return false
	}
	if t.MemberID == uuid.Nil {
		return true
	}
	return e.MemberID == t.MemberID
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "member with email already exists: " + e.Email
}
