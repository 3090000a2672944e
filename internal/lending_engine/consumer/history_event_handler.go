package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/platform/messaging/producers"
)

const (
	reasonUndecodable  = "undecodable lending event"
	reasonInvalidEvent = "invalid lending event"
)

// HistoryEventHandler projects lending events from Kafka into the member history store
type HistoryEventHandler struct {
	history  history.Repository
	producer producers.DeadLetterPublisher
	logger   *slog.Logger
}

func NewHistoryEventHandler(
	logger *slog.Logger,
	historyRepo history.Repository,
	producer producers.DeadLetterPublisher,
) *HistoryEventHandler {
	return &HistoryEventHandler{
		history:  historyRepo,
		producer: producer,
		logger:   logger,
	}
}

// HandleMessage appends the event to the history. Redelivered events are acknowledged
// without a second write.
func (h *HistoryEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event history.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("%s: %s", reasonUndecodable, err), err)
	}

	if err := validateEvent(&event); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("%s: %s", reasonInvalidEvent, err), err)
	}

	log := h.logger.With("event_id", event.EventID, "event_type", event.Type, "member_id", event.MemberID)
	if event.CorrelationID != "" {
		log = log.With("correlation_id", event.CorrelationID)
	}

	if err := h.history.Append(ctx, &event); err != nil {
		if errors.Is(err, history.ErrDuplicateEvent{}) {
			log.Debug("Lending event already recorded")
			return nil
		}
		log.Error("Failed to record lending event", "error", err)
		return fmt.Errorf("recording event %s failed: %w", event.EventID, err)
	}

	log.Info("Recorded lending event")
	return nil
}

// deadLetter parks a poison message. Such a message never becomes valid, so
// without a DLQ it is dropped rather than retried. A failing DLQ returns an error
// and the consumer retries until the message is parked.
func (h *HistoryEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	if h.producer == nil {
		h.logger.Error("Dropping lending event, no DLQ configured", "message_key", string(key), "reason", reason)
		return nil
	}

	h.logger.Error("Rejecting lending event", "message_key", string(key), "reason", reason)
	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish rejected event to DLQ", "message_key", string(key), "dlq_error", err)
		return fmt.Errorf("%s: %w", reason, errors.Join(cause, err))
	}
	return nil
}

var (
	errMissingEventID  = errors.New("missing event id")
	errMissingMemberID = errors.New("missing member id")
	errUnknownType     = errors.New("unknown event type")
	errMissingTime     = errors.New("missing occurred_at")
)

func validateEvent(e *history.Event) error {
	switch {
	case e.EventID == "":
		return errMissingEventID
	case e.MemberID == "":
		return errMissingMemberID
	case !e.Type.IsValid():
		return fmt.Errorf("%w: %q", errUnknownType, e.Type)
	case e.OccurredAt.IsZero():
		return errMissingTime
	}
	return nil
}
