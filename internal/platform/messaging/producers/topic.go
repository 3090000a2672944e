package producers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/library-lending-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	topicLookupAttempts = 5
	topicLookupDelay    = 2 * time.Second
)

// openTopicWriter makes sure topic exists on the cluster and returns a
// synchronous writer that waits for all in-sync replicas.
func openTopicWriter(ctx context.Context, log *slog.Logger, cfg *config.KafkaConfig, topic string, balancer kafka.Balancer) (*kafka.Writer, error) {
	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka at %s: %w", cfg.Brokers, err)
	}
	defer conn.Close()

	if err := ensureTopic(ctx, conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, log); err != nil {
		return nil, err
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     balancer,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}, nil
}

// ensureTopic creates topic when its partitions cannot be read. A freshly started
// broker often fails the first lookups, so they are retried a few times.
func ensureTopic(ctx context.Context, conn *kafka.Conn, topic string, partitions, replication int, log *slog.Logger) error {
	var (
		found   []kafka.Partition
		readErr error
	)
	for attempt := 1; attempt <= topicLookupAttempts; attempt++ {
		if found, readErr = conn.ReadPartitions(topic); readErr == nil {
			break
		}
		log.Warn("Kafka topic lookup failed", "topic", topic, "attempt", attempt, "error", readErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(topicLookupDelay):
		}
	}

	if len(found) > 0 {
		log.Info("Kafka topic ready", "topic", topic, "partitions", len(found))
		return nil
	}

	tc := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     max(partitions, 1),
		ReplicationFactor: max(replication, 1),
	}
	log.Info("Creating Kafka topic", "topic", topic, "partitions", tc.NumPartitions, "last_read_error", readErr)
	if err := conn.CreateTopics(tc); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	return nil
}
