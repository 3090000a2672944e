package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// EventPublisher writes encoded lending events to the event topic. The key
// selects the partition, so events for one member stay ordered.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, payload []byte, headers map[string]string) error
	Close() error
}

// DeadLetterPublisher parks an event the history consumer could not apply.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, payload []byte, reason string) error
	Close() error
}

// KafkaWriter is the subset of *kafka.Writer the producers use.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	_ KafkaWriter         = (*kafka.Writer)(nil)
	_ EventPublisher      = (*LendingEventProducer)(nil)
	_ DeadLetterPublisher = (*DLQProducer)(nil)
)
