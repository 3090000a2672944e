package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/suspension"
	"github.com/library-lending-engine/internal/lending_engine/service"
	"github.com/library-lending-engine/internal/logger"
)

type SuspensionManagerImpl struct {
	members      member.Repository
	transactions lending.Repository
	fines        fine.Repository
	logger       *slog.Logger
}

func NewSuspensionManager(members member.Repository, transactions lending.Repository, fines fine.Repository, logger *slog.Logger) service.SuspensionManager {
	return &SuspensionManagerImpl{
		members:      members,
		transactions: transactions,
		fines:        fines,
		logger:       logger,
	}
}

// Apply reads the member's overdue count and unpaid fines inside tx and stores the
// status suspension.Decide picks. The caller must hold the member row lock.
func (s *SuspensionManagerImpl) Apply(ctx context.Context, tx pgx.Tx, m *member.Member) (member.Status, bool, error) {
	overdue, err := s.transactions.WithTx(tx).CountOverdueByMember(ctx, m.ID)
	if err != nil {
		return m.Status, false, fmt.Errorf("failed to count overdue loans of member %s: %w", m.ID.String(), err)
	}
	hasUnpaid, err := s.fines.WithTx(tx).HasUnpaidByMember(ctx, m.ID)
	if err != nil {
		return m.Status, false, fmt.Errorf("failed to check unpaid fines of member %s: %w", m.ID.String(), err)
	}

	next, changed := suspension.Decide(m.Status, overdue, hasUnpaid)
	if !changed {
		return m.Status, false, nil
	}

	if err := s.members.WithTx(tx).SetStatus(ctx, m.ID, next); err != nil {
		return m.Status, false, fmt.Errorf("failed to set status of member %s: %w", m.ID.String(), err)
	}

	previous := m.Status
	m.Status = next
	logger.FromContext(ctx, s.logger).Info("Member standing changed",
		"member_id", m.ID.String(),
		"from", string(previous),
		"to", string(next),
		"overdue", overdue,
		"has_unpaid_fines", hasUnpaid,
	)
	return previous, true, nil
}
