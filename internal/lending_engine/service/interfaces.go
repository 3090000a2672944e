package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/shopspring/decimal"
)

// LendingService borrows and returns items
type LendingService interface {
	Borrow(ctx context.Context, itemID, memberID uuid.UUID) (*lending.Transaction, error)
	ReturnItem(ctx context.Context, transactionID uuid.UUID) (*lending.Transaction, error)
}

// FineService settles fines
type FineService interface {
	PayFine(ctx context.Context, fineID uuid.UUID, amount decimal.Decimal) (*fine.Fine, error)
}

// Sweeper flips past-due transactions to overdue and re-evaluates member standing
type Sweeper interface {
	SweepOverdues(ctx context.Context) (int, error)
}

// EligibilityChecker locks the item and member of a borrow request and applies
// the borrow rules to them
type EligibilityChecker interface {
	CheckBorrow(ctx context.Context, tx pgx.Tx, itemID, memberID uuid.UUID) (*item.Item, *member.Member, error)
}

// FineAssessor keeps fines and the member's fines_due in step
type FineAssessor interface {
	// AssessOverdue fines a returned transaction for each late day. It returns a nil
	// fine when the return was on time.
	AssessOverdue(ctx context.Context, tx pgx.Tx, txn *lending.Transaction, m *member.Member) (*fine.Fine, error)
	// Settle marks the fine paid at paidAt and removes its amount from fines_due
	Settle(ctx context.Context, tx pgx.Tx, f *fine.Fine, m *member.Member, paidAt time.Time) error
}

// SuspensionManager applies the suspension policy to a locked member
type SuspensionManager interface {
	Apply(ctx context.Context, tx pgx.Tx, m *member.Member) (previous member.Status, changed bool, err error)
}

// OutboxManager stages lending events in the outbox of the current transaction
type OutboxManager interface {
	Record(ctx context.Context, tx pgx.Tx, events ...*history.Event) error
}
