package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/logger"
	"github.com/library-lending-engine/internal/platform/persistence"
	"github.com/panjf2000/ants/v2"
)

// SweeperImpl flips past-due transactions to overdue in one database transaction,
// then re-evaluates each affected member on a worker pool, one transaction per member.
type SweeperImpl struct {
	unit         unitOfWork
	transactions lending.Repository
	members      member.Repository
	suspension   SuspensionManager
	outbox       OutboxManager
	pool         *ants.Pool
	now          func() time.Time
	logger       *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewSweeper(
	db persistence.TxBeginner,
	transactions lending.Repository,
	members member.Repository,
	suspension SuspensionManager,
	outbox OutboxManager,
	config WorkerPoolConfig,
	logger *slog.Logger,
	opts ...Option,
) (*SweeperImpl, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweeper worker pool: %w", err)
	}

	o := newOptions(opts)
	return &SweeperImpl{
		unit:         unitOfWork{db: db, retry: o.retry, logger: logger},
		transactions: transactions,
		members:      members,
		suspension:   suspension,
		outbox:       outbox,
		pool:         pool,
		now:          o.now,
		logger:       logger,
	}, nil
}

// SweepOverdues returns the number of past-due transactions visited, including
// those that were already overdue. Member re-evaluation failures are reported
// together after every member has been tried.
func (s *SweeperImpl) SweepOverdues(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx, s.logger)
	now := s.now()

	var marks []lending.OverdueMark
	err := s.unit.run(ctx, "sweep", func(tx pgx.Tx) error {
		visited, err := s.transactions.WithTx(tx).MarkOverdue(ctx, now)
		if err != nil {
			return err
		}

		var events []*history.Event
		for _, mark := range visited {
			if mark.NewlyOverdue() {
				events = append(events, history.Overdue(mark, now))
			}
		}
		if len(events) > 0 {
			if err := s.outbox.Record(ctx, tx, events...); err != nil {
				return err
			}
		}

		marks = visited
		return nil
	})
	if err != nil {
		log.Error("Overdue sweep failed", "error", err)
		return 0, err
	}

	memberIDs := affectedMembers(marks)
	log.Info("Overdue transactions marked",
		"visited", len(marks),
		"members", len(memberIDs),
	)

	if err := s.reevaluate(ctx, memberIDs); err != nil {
		return len(marks), err
	}
	return len(marks), nil
}

func (s *SweeperImpl) reevaluate(ctx context.Context, memberIDs []uuid.UUID) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, memberID := range memberIDs {
		memberID := memberID
		task := func() {
			defer wg.Done()
			if err := s.reevaluateMember(ctx, memberID); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}

		wg.Add(1)
		if err := s.pool.Submit(task); err != nil {
			s.logger.Warn("Worker pool rejected suspension task, running inline",
				"member_id", memberID.String(),
				"error", err,
			)
			task()
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *SweeperImpl) reevaluateMember(ctx context.Context, memberID uuid.UUID) error {
	log := logger.FromContext(ctx, s.logger).With("member_id", memberID.String())

	err := s.unit.run(ctx, "reevaluate_member", func(tx pgx.Tx) error {
		lockedMember, err := s.members.WithTx(tx).LockForUpdate(ctx, memberID)
		if err != nil {
			return err
		}

		previous, changed, err := s.suspension.Apply(ctx, tx, lockedMember)
		if err != nil || !changed {
			return err
		}

		event := history.StandingChanged(lockedMember, previous, s.now())
		if event == nil {
			return nil
		}
		return s.outbox.Record(ctx, tx, event)
	})
	if err != nil {
		log.Error("Failed to re-evaluate member standing", "error", err)
		return fmt.Errorf("failed to re-evaluate member %s: %w", memberID.String(), err)
	}
	return nil
}

// Shutdown releases the worker pool
func (s *SweeperImpl) Shutdown() {
	s.logger.Info("Shutting down sweeper worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func affectedMembers(marks []lending.OverdueMark) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(marks))
	var ids []uuid.UUID
	for _, mark := range marks {
		if _, ok := seen[mark.MemberID]; ok {
			continue
		}
		seen[mark.MemberID] = struct{}{}
		ids = append(ids, mark.MemberID)
	}
	return ids
}
