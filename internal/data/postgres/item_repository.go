// Package postgres provides PostgreSQL implementations of the lending domain repositories.
// Every repository can be bound to a pgx.Tx with WithTx so that one lending operation
// reads and writes inside a single database transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/platform/persistence"
)

const itemColumns = `id, title, author, category, status, created_at, updated_at`

// ItemRepository implements the item.Repository interface for PostgreSQL
type ItemRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewItemRepository creates a new PostgreSQL item repository
func NewItemRepository(logger *slog.Logger, db persistence.Querier) item.Repository {
	return &ItemRepository{
		querier: db,
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *ItemRepository) WithTx(tx pgx.Tx) item.Repository {
	return &ItemRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new item
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		it.ID,
		it.Title,
		it.Author,
		it.Category,
		it.Status,
		it.CreatedAt,
		it.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create item", "error", err)
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by its ID
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	it, err := scanItem(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to get item", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return it, nil
}

// LockForUpdate obtains a row lock on the item and returns its current state.
// Must be called within a transaction.
func (r *ItemRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`

	it, err := scanItem(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to lock item for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock item for update: %w", err)
	}

	return it, nil
}

// List returns items ordered by title
func (r *ItemRepository) List(ctx context.Context, limit, offset int) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY title ASC, id ASC LIMIT $1 OFFSET $2`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list items", "error", err)
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			r.logger.Error("Failed to scan item", "error", err)
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over items", "error", err)
		return nil, fmt.Errorf("error iterating over items: %w", err)
	}

	return items, nil
}

// SetStatus changes the circulation status of an item
func (r *ItemRepository) SetStatus(ctx context.Context, id uuid.UUID, status item.Status) error {
	query := `UPDATE items SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.querier.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to set item status", "id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to set item status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return item.ErrItemNotFound{ItemID: id}
	}

	return nil
}

func scanItem(row pgx.Row) (*item.Item, error) {
	var it item.Item
	err := row.Scan(
		&it.ID,
		&it.Title,
		&it.Author,
		&it.Category,
		&it.Status,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
