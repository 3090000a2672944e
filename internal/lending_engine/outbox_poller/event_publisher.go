package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/library-lending-engine/internal/domain/outbox"
	"github.com/library-lending-engine/internal/domain/shared"
	"github.com/library-lending-engine/internal/platform/messaging/producers"
)

// EventPublisher relays one outbox message to the event topic
type EventPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// KafkaEventPublisher publishes outbox messages to Kafka and marks them processed
type KafkaEventPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.EventPublisher
	logger     *slog.Logger
}

func NewKafkaEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.EventPublisher,
	logger *slog.Logger,
) EventPublisher {
	return &KafkaEventPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Publish sends the event keyed by member id. A payload that cannot be decoded is
// parked as FAILED_TO_PUBLISH since retrying it can never succeed.
func (p *KafkaEventPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		p.logger.Error("Failed to decode lending event from outbox payload", "outbox_id", message.ID, "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Failed to park undecodable outbox message", "outbox_id", message.ID, "error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	log := p.logger.With("outbox_id", message.ID, "event_id", event.EventID, "event_type", event.Type)
	if event.CorrelationID != "" {
		log = log.With("correlation_id", event.CorrelationID)
	}

	headers := map[string]string{"event-type": string(event.Type)}
	if event.CorrelationID != "" {
		headers["correlation-id"] = event.CorrelationID
	}

	if err := p.producer.PublishEvent(ctx, event.MemberID, message.Payload, headers); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventID, err)
	}

	// a failure here republishes the event on the next poll; the history projection dedupes by event id
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		log.Error("Published event but failed to mark outbox message PROCESSED", "error", err)
		return fmt.Errorf("event %s published, but failed to mark outbox %d as PROCESSED: %w", event.EventID, message.ID, err)
	}

	log.Debug("Outbox message published")
	return nil
}
