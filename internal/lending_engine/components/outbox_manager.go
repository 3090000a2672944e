package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/outbox"
	"github.com/library-lending-engine/internal/lending_engine/service"
	"github.com/library-lending-engine/internal/logger"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Record writes one outbox message per event in tx, tagging events with the
// request's correlation id
func (m *OutboxManagerImpl) Record(ctx context.Context, tx pgx.Tx, events ...*history.Event) error {
	log := logger.FromContext(ctx, m.logger)
	correlationID := logger.CorrelationID(ctx)
	outboxRepoTx := m.outboxRepo.WithTx(tx)

	for _, event := range events {
		if event.CorrelationID == "" {
			event.CorrelationID = correlationID
		}

		message, err := outbox.NewMessage(event)
		if err != nil {
			log.Error("Failed to build outbox message",
				"event_id", event.EventID,
				"event_type", string(event.Type),
				"error", err,
			)
			return fmt.Errorf("failed to build outbox message for event %s: %w", event.EventID, err)
		}

		if err := outboxRepoTx.Create(ctx, message); err != nil {
			return fmt.Errorf("failed to stage event %s: %w", event.EventID, err)
		}
		log.Debug("Lending event staged",
			"event_id", event.EventID,
			"event_type", string(event.Type),
			"outbox_id", message.ID,
		)
	}
	return nil
}
