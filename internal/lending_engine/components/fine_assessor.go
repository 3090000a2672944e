package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/lending_engine/service"
	"github.com/library-lending-engine/internal/logger"
	"github.com/shopspring/decimal"
)

var errNotReturned = errors.New("transaction has no return time")

type FineAssessorImpl struct {
	fines      fine.Repository
	members    member.Repository
	finePerDay decimal.Decimal
	logger     *slog.Logger
}

func NewFineAssessor(fines fine.Repository, members member.Repository, finePerDay decimal.Decimal, logger *slog.Logger) service.FineAssessor {
	return &FineAssessorImpl{
		fines:      fines,
		members:    members,
		finePerDay: finePerDay,
		logger:     logger,
	}
}

// AssessOverdue fines a returned transaction per overdue calendar day and adds the
// amount to the member's fines_due. m.FinesDue is refreshed from the stored value.
func (a *FineAssessorImpl) AssessOverdue(ctx context.Context, tx pgx.Tx, txn *lending.Transaction, m *member.Member) (*fine.Fine, error) {
	if txn.ReturnedAt == nil {
		return nil, errNotReturned
	}
	log := logger.FromContext(ctx, a.logger).With("transaction_id", txn.ID.String(), "member_id", m.ID.String())

	days := txn.OverdueDays(*txn.ReturnedAt)
	assessed := fine.NewOverdueFine(m.ID, txn.ID, days, a.finePerDay, *txn.ReturnedAt)
	if assessed == nil {
		return nil, nil
	}

	if err := a.fines.WithTx(tx).Create(ctx, assessed); err != nil {
		return nil, fmt.Errorf("failed to create fine for transaction %s: %w", txn.ID.String(), err)
	}

	finesDue, err := a.members.WithTx(tx).AdjustFinesDue(ctx, m.ID, assessed.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to add fine to member %s: %w", m.ID.String(), err)
	}
	m.FinesDue = finesDue

	log.Info("Overdue fine assessed",
		"fine_id", assessed.ID.String(),
		"overdue_days", days,
		"amount", assessed.Amount.StringFixed(2),
		"fines_due", finesDue.StringFixed(2),
	)
	return assessed, nil
}

// Settle marks the fine paid and subtracts the fine amount, not the payment, from fines_due
func (a *FineAssessorImpl) Settle(ctx context.Context, tx pgx.Tx, f *fine.Fine, m *member.Member, paidAt time.Time) error {
	if err := a.fines.WithTx(tx).MarkPaid(ctx, f.ID, paidAt); err != nil {
		return fmt.Errorf("failed to mark fine %s paid: %w", f.ID.String(), err)
	}
	f.MarkPaid(paidAt)

	finesDue, err := a.members.WithTx(tx).AdjustFinesDue(ctx, m.ID, f.Amount.Neg())
	if err != nil {
		return fmt.Errorf("failed to remove fine from member %s: %w", m.ID.String(), err)
	}
	m.FinesDue = finesDue

	logger.FromContext(ctx, a.logger).Info("Fine settled",
		"fine_id", f.ID.String(),
		"member_id", m.ID.String(),
		"fines_due", finesDue.StringFixed(2),
	)
	return nil
}
