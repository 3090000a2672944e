package consumers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/library-lending-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. A non-nil error makes the consumer retry
// the same message; nothing after it is committed until it succeeds.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// MessageReader is the subset of kafka.Reader the consumer relies on
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer using a Kafka consumer group
type KafkaConsumer struct {
	reader     MessageReader
	logger     *slog.Logger
	topic      string
	groupID    string
	fetchPause time.Duration
	retryBase  time.Duration
	retryMax   time.Duration
	wg         sync.WaitGroup
}

const (
	defaultRetryBase = 500 * time.Millisecond
	defaultRetryMax  = 30 * time.Second
)

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := cfg.StartOffset
	if startOffset == 0 {
		startOffset = kafka.FirstOffset
	}

	return &KafkaConsumer{
		logger:     logger,
		topic:      cfg.EventTopic,
		groupID:    cfg.ConsumerGroup,
		fetchPause: time.Second,
		retryBase:  defaultRetryBase,
		retryMax:   defaultRetryMax,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       cfg.EventTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
	}
}

// Subscribe starts consuming in the background until ctx is cancelled
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topic", "topic", c.topic, "group_id", c.groupID)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consume(ctx, handler)
	}()

	return nil
}

func (c *KafkaConsumer) consume(ctx context.Context, handler MessageHandler) {
	for {
		if ctx.Err() != nil {
			c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", "topic", c.topic, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.fetchPause):
			}
			continue
		}

		log := c.logger.With(
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)
		log.Debug("Received message from Kafka")

		if !c.handleUntilDone(ctx, handler, msg, log) {
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error("Failed to commit message after processing", "error", err)
		}
	}
}

// handleUntilDone runs handler on msg until it succeeds, backing off between
// attempts. Committing a later offset would skip msg for the whole group, so the
// loop stays on it. It returns false when ctx ends first.
func (c *KafkaConsumer) handleUntilDone(ctx context.Context, handler MessageHandler, msg kafka.Message, log *slog.Logger) bool {
	delay := c.retryBase
	if delay <= 0 {
		delay = defaultRetryBase
	}
	maxDelay := max(c.retryMax, delay)

	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			log.Warn("Stopping with message unprocessed, offset not committed", "attempt", attempt, "error", err)
			return false
		}
		log.Error("Failed to process message, retrying", "attempt", attempt, "retry_in", delay, "error", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay = min(delay*2, maxDelay)
	}
}

// Close waits for the consume loop to exit before closing the reader.
// The caller is expected to cancel the Subscribe context first.
func (c *KafkaConsumer) Close() error {
	c.wg.Wait()
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
