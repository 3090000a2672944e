package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/outbox"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/library-lending-engine/internal/platform/persistence"
)

const outboxColumns = `id, event_id, event_type, member_id, payload, status, attempts, created_at, last_attempt_at`

// OutboxRepository stores lending events next to the state change that raised
// them. The poller reads them back in insertion order.
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, db persistence.Querier) outbox.Repository {
	return &OutboxRepository{querier: db, logger: logger}
}

func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{querier: tx, logger: r.logger}
}

func (r *OutboxRepository) Create(ctx context.Context, m *outbox.Message) error {
	const query = `
		INSERT INTO lending_outbox (event_id, event_type, member_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.querier.QueryRow(ctx, query,
		m.EventID, m.EventType, m.MemberID, m.Payload, m.Status, m.Attempts, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to enqueue lending event",
			"event_id", m.EventID.String(),
			"event_type", string(m.EventType),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// GetPending returns up to limit unpublished messages, oldest first.
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	query := `SELECT ` + outboxColumns + `
		FROM lending_outbox
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	rows, err := r.querier.Query(ctx, query, shared.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*outbox.Message, 0, limit)
	for rows.Next() {
		m, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending outbox messages: %w", err)
	}
	return messages, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return r.touch(ctx, id, "set status "+string(status),
		`UPDATE lending_outbox SET status = $1, last_attempt_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
}

// IncrementAttempts records one failed publish.
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return r.touch(ctx, id, "increment attempts",
		`UPDATE lending_outbox SET attempts = attempts + 1, last_attempt_at = $1 WHERE id = $2`,
		time.Now().UTC(), id)
}

// touch runs a single-row update and maps zero affected rows to ErrMessageNotFound.
func (r *OutboxRepository) touch(ctx context.Context, id int64, op, query string, args ...any) error {
	tag, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Outbox update failed", "id", id, "op", op, "error", err)
		return fmt.Errorf("failed to %s on outbox message %d: %w", op, id, err)
	}
	if tag.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

func scanOutboxMessage(row pgx.Row) (*outbox.Message, error) {
	var m outbox.Message
	err := row.Scan(
		&m.ID, &m.EventID, &m.EventType, &m.MemberID, &m.Payload,
		&m.Status, &m.Attempts, &m.CreatedAt, &m.LastAttemptAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan outbox message: %w", err)
	}
	return &m, nil
}
