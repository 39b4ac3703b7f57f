// Package mongo provides the MongoDB read model of the ledger: a journal of movements
// projected from the movement topic.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/natillera-ledger/internal/domain/movement"
)

const (
	// JournalCollectionName is the name of the movement journal collection in MongoDB
	JournalCollectionName = "movement_journal"
)

// JournalRepository implements the movement.JournalRepository interface for MongoDB
type JournalRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewJournalRepository creates a new MongoDB journal repository
func NewJournalRepository(logger *slog.Logger, db *mongo.Database) *JournalRepository {
	return &JournalRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique movement index and the per-member listing index
func (r *JournalRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(JournalCollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "movement_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "member_id", Value: 1}, {Key: "movement_id", Value: -1}},
		},
	})
	if err != nil {
		r.logger.Error("Failed to create journal indexes", "error", err)
		return fmt.Errorf("failed to create journal indexes: %w", err)
	}

	return nil
}

// Upsert stores the movement keyed by its ID. Replaying the same event leaves a single document.
func (r *JournalRepository) Upsert(ctx context.Context, entry *movement.Entry) error {
	collection := r.db.Collection(JournalCollectionName)

	filter := bson.M{"movement_id": entry.ID}
	_, err := collection.ReplaceOne(ctx, filter, entry, options.Replace().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to upsert journal entry",
			"movement_id", entry.ID,
			"member_id", entry.MemberID,
			"error", err)
		return fmt.Errorf("failed to upsert journal entry: %w", err)
	}

	return nil
}

// ListByMember retrieves paginated journal entries for a member, newest movement first
func (r *JournalRepository) ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]*movement.Entry, error) {
	collection := r.db.Collection(JournalCollectionName)

	filter := bson.M{"member_id": memberID}
	opts := options.Find().
		SetSort(bson.D{{Key: "movement_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get journal entries",
			"member_id", memberID,
			"error", err)
		return nil, fmt.Errorf("failed to get journal entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*movement.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode journal entries",
			"member_id", memberID,
			"error", err)
		return nil, fmt.Errorf("failed to decode journal entries: %w", err)
	}

	return entries, nil
}

// CountByMember counts the journal entries of a member
func (r *JournalRepository) CountByMember(ctx context.Context, memberID int64) (int64, error) {
	collection := r.db.Collection(JournalCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"member_id": memberID})
	if err != nil {
		r.logger.Error("Failed to count journal entries",
			"member_id", memberID,
			"error", err)
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}

	return count, nil
}

// DeleteByMember purges the member's journal after an administrative reset
func (r *JournalRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	collection := r.db.Collection(JournalCollectionName)

	result, err := collection.DeleteMany(ctx, bson.M{"member_id": memberID})
	if err != nil {
		r.logger.Error("Failed to delete journal entries",
			"member_id", memberID,
			"error", err)
		return 0, fmt.Errorf("failed to delete journal entries: %w", err)
	}

	return result.DeletedCount, nil
}
