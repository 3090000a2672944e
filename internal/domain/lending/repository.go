package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/shared"
)

// Repository defines lending transaction persistence operations
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error

	// CountActiveByMember counts the member's non-returned transactions
	CountActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error)
	CountOverdueByMember(ctx context.Context, memberID uuid.UUID) (int, error)

	// MarkOverdue flips every non-returned transaction due before now to overdue
	// and reports each row it visited, including rows that were already overdue
	MarkOverdue(ctx context.Context, now time.Time) ([]OverdueMark, error)

	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*Transaction, error)
	ListActiveByMember(ctx context.Context, memberID uuid.UUID) ([]*Transaction, error)
	ListOverdue(ctx context.Context) ([]*Transaction, error)

	// LockForUpdate reads the transaction holding a row lock until the surrounding transaction ends
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates missing lending transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "lending transaction not found: " + e.TransactionID.String()
}

// Is matches any ErrTransactionNotFound when the target TransactionID is empty
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrOpenTransactionExists indicates a second non-returned transaction was attempted
// for an item, rejected by the open-transaction unique index
type ErrOpenTransactionExists struct {
	ItemID uuid.UUID
}

func (e ErrOpenTransactionExists) Error() string {
	return "item already has an open lending transaction: " + e.ItemID.String()
}

// Is matches any ErrOpenTransactionExists when the target ItemID is empty
func (e ErrOpenTransactionExists) Is(target error) bool {
	t, ok := target.(ErrOpenTransactionExists)
	if !ok {
		return false
	}
	if t.ItemID == uuid.Nil {
		return true
	}
	return e.ItemID == t.ItemID
}

func (e ErrOpenTransactionExists) Unwrap() error {
	return shared.ErrConstraintConflict
}
