package repositories

import (
	"context"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WatchedRepository defines the interface for watched-entry data operations
type WatchedRepository interface {
	MarkWatched(ctx context.Context, entry *models.WatchedEntry) error
	GetRecentByUserIDs(ctx context.Context, userIDs []uint, since time.Time, limit int64) ([]models.WatchedEntry, error)
}

// MongoWatchedRepository implements WatchedRepository for MongoDB
type MongoWatchedRepository struct {
	collection *mongo.Collection
}

// NewMongoWatchedRepository creates a new MongoWatchedRepository
func NewMongoWatchedRepository(db *mongo.Database) *MongoWatchedRepository {
	return &MongoWatchedRepository{collection: db.Collection("watched")}
}

// MarkWatched upserts the (user, movie) entry, refreshing watched_at and rating
func (r *MongoWatchedRepository) MarkWatched(ctx context.Context, entry *models.WatchedEntry) error {
	entry.WatchedAt = time.Now()
	filter := bson.M{"user_id": entry.UserID, "movie_id": entry.MovieID}
	set := bson.M{"watched_at": entry.WatchedAt}
	if entry.Rating != nil {
		set["rating"] = *entry.Rating
	}
	update := bson.M{"$set": set}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	return r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(entry)
}

// GetRecentByUserIDs returns watched entries by userIDs at or after since, newest first
func (r *MongoWatchedRepository) GetRecentByUserIDs(ctx context.Context, userIDs []uint, since time.Time, limit int64) ([]models.WatchedEntry, error) {
	if len(userIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, recentWatchedFilter(userIDs, since), recentFirst("watched_at", limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.WatchedEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func recentWatchedFilter(userIDs []uint, since time.Time) bson.M {
	return bson.M{
		"user_id":    bson.M{"$in": userIDs},
		"watched_at": bson.M{"$gte": since},
	}
}
