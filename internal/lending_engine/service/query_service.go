package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
)

// QueryService serves read-only views of lending state
type QueryService struct {
	transactions lending.Repository
	fines        fine.Repository
	members      member.Repository
	history      history.Repository
	sweeper      Sweeper
	logger       *slog.Logger
}

func NewQueryService(
	transactions lending.Repository,
	fines fine.Repository,
	members member.Repository,
	historyRepo history.Repository,
	sweeper Sweeper,
	logger *slog.Logger,
) *QueryService {
	return &QueryService{
		transactions: transactions,
		fines:        fines,
		members:      members,
		history:      historyRepo,
		sweeper:      sweeper,
		logger:       logger,
	}
}

// ListOverdue sweeps first so the listing reflects the current date
func (q *QueryService) ListOverdue(ctx context.Context) ([]*lending.Transaction, error) {
	if _, err := q.sweeper.SweepOverdues(ctx); err != nil {
		return nil, err
	}
	return q.transactions.ListOverdue(ctx)
}

func (q *QueryService) GetTransaction(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	return q.transactions.GetByID(ctx, id)
}

// MemberLoans lists the member's transactions that are not yet returned
func (q *QueryService) MemberLoans(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error) {
	if _, err := q.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return q.transactions.ListActiveByMember(ctx, memberID)
}

func (q *QueryService) MemberTransactions(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error) {
	if _, err := q.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return q.transactions.ListByMember(ctx, memberID)
}

func (q *QueryService) MemberFines(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error) {
	if _, err := q.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return q.fines.ListByMember(ctx, memberID)
}

func (q *QueryService) ListFines(ctx context.Context, limit, offset int) ([]*fine.Fine, error) {
	return q.fines.List(ctx, limit, offset)
}

func (q *QueryService) GetFine(ctx context.Context, id uuid.UUID) (*fine.Fine, error) {
	return q.fines.GetByID(ctx, id)
}

// MemberHistory pages through the member's lending events, newest first, and
// reports the total number of events
func (q *QueryService) MemberHistory(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*history.Event, int64, error) {
	if _, err := q.members.GetByID(ctx, memberID); err != nil {
		return nil, 0, err
	}

	events, err := q.history.ListByMember(ctx, memberID, limit, offset)
	if err != nil {
		q.logger.Error("Failed to read member history", "member_id", memberID.String(), "error", err)
		return nil, 0, err
	}
	total, err := q.history.CountByMember(ctx, memberID)
	if err != nil {
		q.logger.Error("Failed to count member history", "member_id", memberID.String(), "error", err)
		return nil, 0, err
	}
	return events, total, nil
}
