package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/platform/persistence"
)

const fineColumns = `id, member_id, transaction_id, amount, reason, status, created_at, paid_at`

// FineRepository implements the fine.Repository interface for PostgreSQL
type FineRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFineRepository creates a new PostgreSQL fine repository
func NewFineRepository(logger *slog.Logger, db persistence.Querier) fine.Repository {
	return &FineRepository{
		querier: db,
		logger:  logger,
	}
}

func (r *FineRepository) WithTx(tx pgx.Tx) fine.Repository {
	return &FineRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *FineRepository) Create(ctx context.Context, f *fine.Fine) error {
	query := `
		INSERT INTO fines (` + fineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		f.ID,
		f.MemberID,
		f.TransactionID,
		f.Amount,
		f.Reason,
		f.Status,
		f.CreatedAt,
		f.PaidAt,
	)
	if err != nil {
		r.logger.Error("Failed to create fine", "member_id", f.MemberID.String(), "error", err)
		return fmt.Errorf("failed to create fine: %w", err)
	}

	return nil
}

func (r *FineRepository) GetByID(ctx context.Context, id uuid.UUID) (*fine.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE id = $1`

	f, err := scanFine(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fine.ErrFineNotFound{FineID: id}
		}
		r.logger.Error("Failed to get fine", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get fine: %w", err)
	}

	return f, nil
}

// LockForUpdate obtains a row lock on the fine and returns its current state
func (r *FineRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*fine.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE id = $1 FOR UPDATE`

	f, err := scanFine(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fine.ErrFineNotFound{FineID: id}
		}
		r.logger.Error("Failed to lock fine for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock fine for update: %w", err)
	}

	return f, nil
}

// MarkPaid settles an unpaid fine. Paid is terminal, so a fine that is already
// paid is not rewritten and is reported as not found.
func (r *FineRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	query := `UPDATE fines SET status = $1, paid_at = $2 WHERE id = $3 AND status = $4`

	result, err := r.querier.Exec(ctx, query, fine.StatusPaid, paidAt, id, fine.StatusUnpaid)
	if err != nil {
		r.logger.Error("Failed to mark fine paid", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark fine paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fine.ErrFineNotFound{FineID: id}
	}

	return nil
}

func (r *FineRepository) HasUnpaidByMember(ctx context.Context, memberID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM fines WHERE member_id = $1 AND status = $2)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, memberID, fine.StatusUnpaid).Scan(&exists); err != nil {
		r.logger.Error("Failed to check unpaid fines", "member_id", memberID.String(), "error", err)
		return false, fmt.Errorf("failed to check unpaid fines: %w", err)
	}

	return exists, nil
}

// ListByMember returns the member's fines, newest first
func (r *FineRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*fine.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE member_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, "list member fines", query, memberID)
}

// List returns a page of all fines, newest first
func (r *FineRepository) List(ctx context.Context, limit, offset int) ([]*fine.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, "list fines", query, limit, offset)
}

func (r *FineRepository) list(ctx context.Context, op, query string, args ...any) ([]*fine.Fine, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, "error", err)
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	fines := make([]*fine.Fine, 0)
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			r.logger.Error("Failed to scan fine", "error", err)
			return nil, fmt.Errorf("failed to scan fine: %w", err)
		}
		fines = append(fines, f)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over fines", "error", err)
		return nil, fmt.Errorf("error iterating over fines: %w", err)
	}

	return fines, nil
}

func scanFine(row pgx.Row) (*fine.Fine, error) {
	var f fine.Fine
	err := row.Scan(
		&f.ID,
		&f.MemberID,
		&f.TransactionID,
		&f.Amount,
		&f.Reason,
		&f.Status,
		&f.CreatedAt,
		&f.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
