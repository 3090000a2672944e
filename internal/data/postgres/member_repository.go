package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const memberColumns = `id, name, email, status, fines_due, created_at, updated_at`

// MemberRepository implements the member.Repository interface for PostgreSQL
type MemberRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewMemberRepository creates a new PostgreSQL member repository
func NewMemberRepository(logger *slog.Logger, db persistence.Querier) member.Repository {
	return &MemberRepository{
		querier: db,
		logger:  logger,
	}
}

func (r *MemberRepository) WithTx(tx pgx.Tx) member.Repository {
	return &MemberRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new member. A second member with the same email yields ErrDuplicateEmail.
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		m.ID,
		m.Name,
		m.Email,
		m.Status,
		m.FinesDue,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if _, ok := persistence.UniqueViolation(err); ok {
			return member.ErrDuplicateEmail{Email: m.Email}
		}
		r.logger.Error("Failed to create member", "error", err)
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetByID retrieves a member by its ID
func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	m, err := scanMember(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrMemberNotFound{MemberID: id}
		}
		r.logger.Error("Failed to get member", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}

// LockForUpdate obtains a row lock on the member and returns its current state.
// Member status and fines_due are only ever changed while this lock is held.
func (r *MemberRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`

	m, err := scanMember(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrMemberNotFound{MemberID: id}
		}
		r.logger.Error("Failed to lock member for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock member for update: %w", err)
	}

	return m, nil
}

func (r *MemberRepository) SetStatus(ctx context.Context, id uuid.UUID, status member.Status) error {
	query := `UPDATE members SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.querier.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to set member status", "id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to set member status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return member.ErrMemberNotFound{MemberID: id}
	}

	return nil
}

// AdjustFinesDue applies delta in the database so concurrent adjustments cannot
// lose updates; the result is floored at zero and rounded to cents.
func (r *MemberRepository) AdjustFinesDue(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE members
		SET fines_due = ROUND(GREATEST(fines_due + $1, 0), 2), updated_at = $2
		WHERE id = $3
		RETURNING fines_due
	`

	var finesDue decimal.Decimal
	err := r.querier.QueryRow(ctx, query, delta, time.Now().UTC(), id).Scan(&finesDue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, member.ErrMemberNotFound{MemberID: id}
		}
		r.logger.Error("Failed to adjust member fines due", "id", id.String(), "delta", delta.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to adjust member fines due: %w", err)
	}

	return finesDue, nil
}

func scanMember(row pgx.Row) (*member.Member, error) {
	var m member.Member
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.Status,
		&m.FinesDue,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
