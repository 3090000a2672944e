package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/library-lending-engine/internal/logger"
	"github.com/library-lending-engine/internal/platform/persistence"
)

type LendingServiceImpl struct {
	unit         unitOfWork
	transactions lending.Repository
	items        item.Repository
	members      member.Repository
	eligibility  EligibilityChecker
	fines        FineAssessor
	suspension   SuspensionManager
	outbox       OutboxManager
	rules        lending.Rules
	now          func() time.Time
	logger       *slog.Logger
}

func NewLendingService(
	db persistence.TxBeginner,
	transactions lending.Repository,
	items item.Repository,
	members member.Repository,
	eligibility EligibilityChecker,
	fines FineAssessor,
	suspension SuspensionManager,
	outbox OutboxManager,
	rules lending.Rules,
	logger *slog.Logger,
	opts ...Option,
) *LendingServiceImpl {
	o := newOptions(opts)
	return &LendingServiceImpl{
		unit:         unitOfWork{db: db, retry: o.retry, logger: logger},
		transactions: transactions,
		items:        items,
		members:      members,
		eligibility:  eligibility,
		fines:        fines,
		suspension:   suspension,
		outbox:       outbox,
		rules:        rules,
		now:          o.now,
		logger:       logger,
	}
}

// Borrow lends an available item to an eligible member. The item row lock and the
// open-transaction unique index make concurrent borrows of one item produce a single
// winner; the loser is retried and then sees the item as unavailable.
func (s *LendingServiceImpl) Borrow(ctx context.Context, itemID, memberID uuid.UUID) (*lending.Transaction, error) {
	log := logger.FromContext(ctx, s.logger).With("item_id", itemID.String(), "member_id", memberID.String())
	log.Info("Processing borrow")

	var created *lending.Transaction
	err := s.unit.run(ctx, "borrow", func(tx pgx.Tx) error {
		lockedItem, lockedMember, err := s.eligibility.CheckBorrow(ctx, tx, itemID, memberID)
		if err != nil {
			return err
		}

		txn := lending.NewTransaction(lockedItem.ID, lockedMember.ID, s.now(), s.rules.LoanPeriod)
		if err := s.transactions.WithTx(tx).Create(ctx, txn); err != nil {
			return err
		}
		if err := s.items.WithTx(tx).SetStatus(ctx, lockedItem.ID, item.StatusBorrowed); err != nil {
			return err
		}
		if err := s.outbox.Record(ctx, tx, history.Borrowed(txn)); err != nil {
			return err
		}

		created = txn
		return nil
	})
	if err != nil {
		logFailure(log, "Borrow rejected", err)
		return nil, err
	}

	log.Info("Item borrowed",
		"transaction_id", created.ID.String(),
		"due_at", created.DueAt,
	)
	return created, nil
}

// ReturnItem closes a transaction, fines a late return and re-evaluates the
// member's standing, all in one database transaction.
func (s *LendingServiceImpl) ReturnItem(ctx context.Context, transactionID uuid.UUID) (*lending.Transaction, error) {
	log := logger.FromContext(ctx, s.logger).With("transaction_id", transactionID.String())
	log.Info("Processing return")

	var returned *lending.Transaction
	err := s.unit.run(ctx, "return", func(tx pgx.Tx) error {
		txn, err := s.transactions.WithTx(tx).LockForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.IsReturned() {
			return shared.ErrAlreadyReturned
		}

		// lock order: transaction, item, member
		if _, err := s.items.WithTx(tx).LockForUpdate(ctx, txn.ItemID); err != nil {
			return err
		}
		lockedMember, err := s.members.WithTx(tx).LockForUpdate(ctx, txn.MemberID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.transactions.WithTx(tx).MarkReturned(ctx, txn.ID, now); err != nil {
			return err
		}
		txn.MarkReturned(now)

		assessed, err := s.fines.AssessOverdue(ctx, tx, txn, lockedMember)
		if err != nil {
			return err
		}
		if err := s.items.WithTx(tx).SetStatus(ctx, txn.ItemID, item.StatusAvailable); err != nil {
			return err
		}

		previous, changed, err := s.suspension.Apply(ctx, tx, lockedMember)
		if err != nil {
			return err
		}

		events := []*history.Event{history.Returned(txn)}
		if assessed != nil {
			events = append(events, history.FineAssessed(assessed))
		}
		if changed {
			if event := history.StandingChanged(lockedMember, previous, now); event != nil {
				events = append(events, event)
			}
		}
		if err := s.outbox.Record(ctx, tx, events...); err != nil {
			return err
		}

		returned = txn
		return nil
	})
	if err != nil {
		logFailure(log, "Return rejected", err)
		return nil, err
	}

	log.Info("Item returned", "item_id", returned.ItemID.String(), "member_id", returned.MemberID.String())
	return returned, nil
}
