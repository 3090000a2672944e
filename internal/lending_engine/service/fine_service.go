package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/library-lending-engine/internal/logger"
	"github.com/library-lending-engine/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

type FineServiceImpl struct {
	unit       unitOfWork
	fines      fine.Repository
	members    member.Repository
	assessor   FineAssessor
	suspension SuspensionManager
	outbox     OutboxManager
	now        func() time.Time
	logger     *slog.Logger
}

func NewFineService(
	db persistence.TxBeginner,
	fines fine.Repository,
	members member.Repository,
	assessor FineAssessor,
	suspension SuspensionManager,
	outbox OutboxManager,
	logger *slog.Logger,
	opts ...Option,
) *FineServiceImpl {
	o := newOptions(opts)
	return &FineServiceImpl{
		unit:       unitOfWork{db: db, retry: o.retry, logger: logger},
		fines:      fines,
		members:    members,
		assessor:   assessor,
		suspension: suspension,
		outbox:     outbox,
		now:        o.now,
		logger:     logger,
	}
}

// PayFine settles a fine in full. A payment below the fine amount is rejected
// before anything is written; paying a paid fine again returns it unchanged.
// Any amount above the fine is accepted and not tracked.
func (s *FineServiceImpl) PayFine(ctx context.Context, fineID uuid.UUID, amount decimal.Decimal) (*fine.Fine, error) {
	log := logger.FromContext(ctx, s.logger).With("fine_id", fineID.String(), "amount", amount.String())

	if !amount.IsPositive() {
		log.Warn("Rejected non-positive fine payment")
		return nil, shared.ErrInvalidAmount
	}

	var (
		settled     *fine.Fine
		alreadyPaid bool
	)
	err := s.unit.run(ctx, "pay_fine", func(tx pgx.Tx) error {
		alreadyPaid = false

		lockedFine, err := s.fines.WithTx(tx).LockForUpdate(ctx, fineID)
		if err != nil {
			return err
		}
		if !lockedFine.CoveredBy(amount) {
			return shared.ErrPartialPaymentNotSupported
		}
		if lockedFine.IsPaid() {
			settled = lockedFine
			alreadyPaid = true
			return nil
		}

		lockedMember, err := s.members.WithTx(tx).LockForUpdate(ctx, lockedFine.MemberID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.assessor.Settle(ctx, tx, lockedFine, lockedMember, now); err != nil {
			return err
		}

		previous, changed, err := s.suspension.Apply(ctx, tx, lockedMember)
		if err != nil {
			return err
		}

		events := []*history.Event{history.FinePaid(lockedFine)}
		if changed {
			if event := history.StandingChanged(lockedMember, previous, now); event != nil {
				events = append(events, event)
			}
		}
		if err := s.outbox.Record(ctx, tx, events...); err != nil {
			return err
		}

		settled = lockedFine
		return nil
	})
	if err != nil {
		logFailure(log, "Fine payment rejected", err)
		return nil, err
	}

	if alreadyPaid {
		log.Info("Fine already paid")
	} else {
		log.Info("Fine paid", "member_id", settled.MemberID.String())
	}
	return settled, nil
}
