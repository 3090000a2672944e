package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/library-lending-engine/internal/lending_engine/service"
	"github.com/library-lending-engine/internal/logger"
)

// EligibilityCheckerImpl implements the EligibilityChecker interface
type EligibilityCheckerImpl struct {
	items        item.Repository
	members      member.Repository
	transactions lending.Repository
	fines        fine.Repository
	borrowLimit  int
	logger       *slog.Logger
}

// NewEligibilityChecker creates a new EligibilityCheckerImpl
func NewEligibilityChecker(
	items item.Repository,
	members member.Repository,
	transactions lending.Repository,
	fines fine.Repository,
	borrowLimit int,
	logger *slog.Logger,
) service.EligibilityChecker {
	return &EligibilityCheckerImpl{
		items:        items,
		members:      members,
		transactions: transactions,
		fines:        fines,
		borrowLimit:  borrowLimit,
		logger:       logger,
	}
}

// CheckBorrow locks the item, then the member, and applies the borrow rules in order:
// item available, member active, nothing owed, borrow limit not reached.
func (c *EligibilityCheckerImpl) CheckBorrow(ctx context.Context, tx pgx.Tx, itemID, memberID uuid.UUID) (*item.Item, *member.Member, error) {
	log := logger.FromContext(ctx, c.logger).With("item_id", itemID.String(), "member_id", memberID.String())

	lockedItem, err := c.items.WithTx(tx).LockForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, item.ErrItemNotFound{}) {
			log.Warn("Item not found for borrow")
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to lock item %s: %w", itemID.String(), err)
	}

	lockedMember, err := c.members.WithTx(tx).LockForUpdate(ctx, memberID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound{}) {
			log.Warn("Member not found for borrow")
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to lock member %s: %w", memberID.String(), err)
	}

	if !lockedItem.IsAvailable() {
		log.Info("Item not available", "item_status", string(lockedItem.Status))
		return nil, nil, shared.ErrItemUnavailable
	}
	if !lockedMember.IsActive() {
		log.Info("Member not active", "member_status", string(lockedMember.Status))
		return nil, nil, shared.ErrMemberNotActive
	}

	hasUnpaid, err := c.fines.WithTx(tx).HasUnpaidByMember(ctx, memberID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check unpaid fines of member %s: %w", memberID.String(), err)
	}
	if hasUnpaid || lockedMember.HasFinesDue() {
		log.Info("Member has outstanding fines", "fines_due", lockedMember.FinesDue.StringFixed(2))
		return nil, nil, shared.ErrUnpaidFinesOutstanding
	}

	active, err := c.transactions.WithTx(tx).CountActiveByMember(ctx, memberID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count loans of member %s: %w", memberID.String(), err)
	}
	if active >= c.borrowLimit {
		log.Info("Borrow limit reached", "active_loans", active, "limit", c.borrowLimit)
		return nil, nil, shared.ErrBorrowLimitReached
	}

	return lockedItem, lockedMember, nil
}
