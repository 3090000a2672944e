package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/platform/persistence"
)

const (
	transactionColumns = `id, item_id, member_id, status, borrowed_at, due_at, returned_at, created_at, updated_at`

	// openTransactionIndex backs the single non-returned transaction per item
	openTransactionIndex = "uq_lending_transactions_item_open"
)

// TransactionRepository implements the lending.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL lending transaction repository
func NewTransactionRepository(logger *slog.Logger, db persistence.Querier) lending.Repository {
	return &TransactionRepository{
		querier: db,
		logger:  logger,
	}
}

func (r *TransactionRepository) WithTx(tx pgx.Tx) lending.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a new transaction. Losing the race for the item's open-transaction
// index yields lending.ErrOpenTransactionExists.
func (r *TransactionRepository) Create(ctx context.Context, t *lending.Transaction) error {
	query := `
		INSERT INTO lending_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.ItemID,
		t.MemberID,
		t.Status,
		t.BorrowedAt,
		t.DueAt,
		t.ReturnedAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := persistence.UniqueViolation(err); ok && constraint == openTransactionIndex {
			r.logger.Warn("Open lending transaction already exists for item", "item_id", t.ItemID.String())
			return lending.ErrOpenTransactionExists{ItemID: t.ItemID}
		}
		r.logger.Error("Failed to create lending transaction", "item_id", t.ItemID.String(), "error", err)
		return fmt.Errorf("failed to create lending transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM lending_transactions WHERE id = $1`

	t, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lending.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get lending transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get lending transaction: %w", err)
	}

	return t, nil
}

// LockForUpdate obtains a row lock on the transaction and returns its current state
func (r *TransactionRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM lending_transactions WHERE id = $1 FOR UPDATE`

	t, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lending.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to lock lending transaction for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock lending transaction for update: %w", err)
	}

	return t, nil
}

// MarkReturned closes a non-returned transaction. A transaction that is already
// returned is left untouched and reported as not found.
func (r *TransactionRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error {
	query := `
		UPDATE lending_transactions
		SET status = $1, returned_at = $2, updated_at = $2
		WHERE id = $3 AND status <> $1
	`

	result, err := r.querier.Exec(ctx, query, lending.StatusReturned, returnedAt, id)
	if err != nil {
		r.logger.Error("Failed to mark lending transaction returned", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark lending transaction returned: %w", err)
	}

	if result.RowsAffected() == 0 {
		return lending.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

func (r *TransactionRepository) CountActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM lending_transactions WHERE member_id = $1 AND status <> $2`

	var count int
	if err := r.querier.QueryRow(ctx, query, memberID, lending.StatusReturned).Scan(&count); err != nil {
		r.logger.Error("Failed to count active lending transactions", "member_id", memberID.String(), "error", err)
		return 0, fmt.Errorf("failed to count active lending transactions: %w", err)
	}

	return count, nil
}

func (r *TransactionRepository) CountOverdueByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM lending_transactions WHERE member_id = $1 AND status = $2`

	var count int
	if err := r.querier.QueryRow(ctx, query, memberID, lending.StatusOverdue).Scan(&count); err != nil {
		r.logger.Error("Failed to count overdue lending transactions", "member_id", memberID.String(), "error", err)
		return 0, fmt.Errorf("failed to count overdue lending transactions: %w", err)
	}

	return count, nil
}

// MarkOverdue flips every non-returned transaction due before now to overdue in a
// single statement. Rows already overdue are rewritten too, so the returned marks
// count every row the sweep recomputed; PreviousStatus tells the newly overdue apart.
func (r *TransactionRepository) MarkOverdue(ctx context.Context, now time.Time) ([]lending.OverdueMark, error) {
	query := `
		UPDATE lending_transactions AS t
		SET status = 'overdue', updated_at = $1
		FROM (
			SELECT id, status FROM lending_transactions
			WHERE status <> 'returned' AND due_at < $1
			FOR UPDATE
		) AS prev
		WHERE t.id = prev.id
		RETURNING t.id, t.item_id, t.member_id, prev.status
	`

	rows, err := r.querier.Query(ctx, query, now)
	if err != nil {
		r.logger.Error("Failed to mark overdue lending transactions", "error", err)
		return nil, fmt.Errorf("failed to mark overdue lending transactions: %w", err)
	}
	defer rows.Close()

	marks := make([]lending.OverdueMark, 0)
	for rows.Next() {
		var mark lending.OverdueMark
		if err := rows.Scan(&mark.TransactionID, &mark.ItemID, &mark.MemberID, &mark.PreviousStatus); err != nil {
			r.logger.Error("Failed to scan overdue mark", "error", err)
			return nil, fmt.Errorf("failed to scan overdue mark: %w", err)
		}
		marks = append(marks, mark)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over overdue marks", "error", err)
		return nil, fmt.Errorf("error iterating over overdue marks: %w", err)
	}

	return marks, nil
}

// ListByMember returns the member's full lending history, newest first
func (r *TransactionRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM lending_transactions
		WHERE member_id = $1
		ORDER BY borrowed_at DESC
	`
	return r.list(ctx, "list member lending transactions", query, memberID)
}

// ListActiveByMember returns the member's non-returned transactions, oldest due first
func (r *TransactionRepository) ListActiveByMember(ctx context.Context, memberID uuid.UUID) ([]*lending.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM lending_transactions
		WHERE member_id = $1 AND status <> 'returned'
		ORDER BY due_at ASC
	`
	return r.list(ctx, "list active member lending transactions", query, memberID)
}

// ListOverdue returns every transaction currently marked overdue, oldest due first
func (r *TransactionRepository) ListOverdue(ctx context.Context) ([]*lending.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM lending_transactions
		WHERE status = 'overdue'
		ORDER BY due_at ASC
	`
	return r.list(ctx, "list overdue lending transactions", query)
}

func (r *TransactionRepository) list(ctx context.Context, op, query string, args ...any) ([]*lending.Transaction, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, "error", err)
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	transactions := make([]*lending.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan lending transaction", "error", err)
			return nil, fmt.Errorf("failed to scan lending transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over lending transactions", "error", err)
		return nil, fmt.Errorf("error iterating over lending transactions: %w", err)
	}

	return transactions, nil
}

func scanTransaction(row pgx.Row) (*lending.Transaction, error) {
	var t lending.Transaction
	err := row.Scan(
		&t.ID,
		&t.ItemID,
		&t.MemberID,
		&t.Status,
		&t.BorrowedAt,
		&t.DueAt,
		&t.ReturnedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
