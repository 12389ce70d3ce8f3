package repositories

import (
	"context"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id string) (*models.Review, error)
	GetRecentVisibleByUserIDs(ctx context.Context, userIDs []uint, since time.Time, limit int64) ([]models.Review, error)
	IncrementCounter(ctx context.Context, id, field string, delta int) error
}

// MongoReviewRepository implements ReviewRepository for MongoDB
type MongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new MongoReviewRepository
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{collection: db.Collection("reviews")}
}

// CreateReview inserts a new review
func (r *MongoReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	now := time.Now()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, review)
	return err
}

// GetReviewByID retrieves a review by ID
func (r *MongoReviewRepository) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&review); err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// GetRecentVisibleByUserIDs returns published, approved reviews by userIDs
// created at or after since, newest first, capped at limit
func (r *MongoReviewRepository) GetRecentVisibleByUserIDs(ctx context.Context, userIDs []uint, since time.Time, limit int64) ([]models.Review, error) {
	if len(userIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, visibleReviewsFilter(userIDs, since), recentFirst("created_at", limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// IncrementCounter adds delta to a counter field such as likes_count
func (r *MongoReviewRepository) IncrementCounter(ctx context.Context, id, field string, delta int) error {
	return incrementCounter(ctx, r.collection, id, field, delta)
}

func visibleReviewsFilter(userIDs []uint, since time.Time) bson.M {
	return bson.M{
		"user_id":           bson.M{"$in": userIDs},
		"is_published":      true,
		"moderation_status": models.ModerationApproved,
		"created_at":        bson.M{"$gte": since},
	}
}

// recentFirst sorts on the time field then _id so equal timestamps come back in a stable order
func recentFirst(field string, limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
}

func incrementCounter(ctx context.Context, collection *mongo.Collection, id, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
