package producers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/library-lending-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

// LendingEventProducer publishes lending events drained from the outbox. Writes are
// synchronous so the outbox row is only marked processed after the broker acknowledged it.
type LendingEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewLendingEventProducer ensures the event topic exists and opens a writer on it
func NewLendingEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*LendingEventProducer, error) {
	if cfg.EventTopic == "" {
		return nil, fmt.Errorf("kafka event topic is not configured")
	}

	// keyed by member so one member's events stay ordered within a partition
	writer, err := openTopicWriter(ctx, logger, cfg, cfg.EventTopic, &kafka.Hash{})
	if err != nil {
		return nil, fmt.Errorf("lending event producer: %w", err)
	}

	return &LendingEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventTopic,
	}, nil
}

func (p *LendingEventProducer) PublishEvent(ctx context.Context, key string, payload []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: kafkaHeaders(headers),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish lending event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish lending event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published lending event", "topic", p.topic, "key", key)
	return nil
}

func (p *LendingEventProducer) Close() error {
	p.logger.Info("Closing lending event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

// kafkaHeaders converts headers in key order so messages are reproducible
func kafkaHeaders(headers map[string]string) []kafka.Header {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		out = append(out, kafka.Header{Key: k, Value: []byte(headers[k])})
	}
	return out
}
