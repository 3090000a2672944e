package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/library-lending-engine/internal/config"
	"github.com/library-lending-engine/internal/domain/outbox"
	"github.com/library-lending-engine/internal/domain/shared"
)

// Poller drains pending outbox messages to the event publisher
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        EventPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher EventPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is cancelled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if _, err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Outbox batch failed", "error", err)
			}
		}
	}
}

// processPendingMessages publishes one batch and returns how many messages went out
func (p *Poller) processPendingMessages(ctx context.Context) (int, error) {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	published := 0
	for _, msg := range messages {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}

		if err := p.publisher.Publish(ctx, msg); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}
		published++
	}

	p.logger.Info("Outbox batch processed", "fetched", len(messages), "published", published)
	return published, nil
}

func (p *Poller) handleFailure(ctx context.Context, msg *outbox.Message, publishErr error) {
	log := p.logger.With("outbox_id", msg.ID, "event_id", msg.EventID, "event_type", msg.EventType)
	log.Error("Failed to publish outbox message", "attempts", msg.Attempts, "error", publishErr)

	if err := p.outboxRepo.IncrementAttempts(ctx, msg.ID); err != nil {
		log.Error("Failed to increment outbox attempts", "error", err)
		return
	}

	if msg.ExhaustedRetries(p.maxRetryAttempts) {
		log.Warn("Max publish attempts reached, marking FAILED_TO_PUBLISH", "attempts_made", msg.Attempts+1)
		if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
			log.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "error", err)
		}
	}
}
