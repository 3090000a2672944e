// Package mongo stores the per-member lending history read model in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/library-lending-engine/internal/domain/history"
)

const (
	// HistoryCollectionName is the name of the lending history collection in MongoDB
	HistoryCollectionName = "lending_history"
)

// HistoryRepository implements the history.Repository interface for MongoDB
type HistoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new MongoDB lending history repository
func NewHistoryRepository(logger *slog.Logger, db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique event index that makes Append idempotent and
// the index serving member history queries.
func (r *HistoryRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(HistoryCollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_event_id"),
		},
		{
			Keys:    bson.D{{Key: "member_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("idx_member_occurred_at"),
		},
	})
	if err != nil {
		r.logger.Error("Failed to create lending history indexes", "error", err)
		return fmt.Errorf("failed to create lending history indexes: %w", err)
	}

	return nil
}

// Append stores a lending event. Redelivered events hit the unique event index
// and are reported as ErrDuplicateEvent.
func (r *HistoryRepository) Append(ctx context.Context, event *history.Event) error {
	collection := r.db.Collection(HistoryCollectionName)

	recordedAt := time.Now().UTC()
	event.RecordedAt = &recordedAt

	_, err := collection.InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return history.ErrDuplicateEvent{EventID: event.EventID}
		}
		r.logger.Error("Failed to append lending event",
			"event_id", event.EventID,
			"type", string(event.Type),
			"error", err)
		return fmt.Errorf("failed to append lending event: %w", err)
	}

	return nil
}

// ListByMember retrieves a page of the member's lending history, newest first.
func (r *HistoryRepository) ListByMember(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]*history.Event, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"member_id": memberID.String()}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get lending history",
			"member_id", memberID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get lending history: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*history.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		r.logger.Error("Failed to decode lending history",
			"member_id", memberID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode lending history: %w", err)
	}

	return events, nil
}

// CountByMember counts the events recorded for a member
func (r *HistoryRepository) CountByMember(ctx context.Context, memberID uuid.UUID) (int64, error) {
	collection := r.db.Collection(HistoryCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"member_id": memberID.String()})
	if err != nil {
		r.logger.Error("Failed to count lending history",
			"member_id", memberID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count lending history: %w", err)
	}

	return count, nil
}

var _ history.Repository = (*HistoryRepository)(nil)

// IsDuplicate reports whether err means the event was already recorded
func IsDuplicate(err error) bool {
	return errors.Is(err, history.ErrDuplicateEvent{})
}
