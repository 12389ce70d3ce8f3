package repositories

import (
	"context"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListRepository defines the interface for list data operations
type ListRepository interface {
	CreateList(ctx context.Context, list *models.List) error
	GetListByID(ctx context.Context, id string) (*models.List, error)
	GetRecentPublicByUserIDs(ctx context.Context, userIDs []uint, since time.Time, limit int64) ([]models.List, error)
	IncrementCounter(ctx context.Context, id, field string, delta int) error
}

// MongoListRepository implements ListRepository for MongoDB
type MongoListRepository struct {
	collection *mongo.Collection
}

// NewMongoListRepository creates a new MongoListRepository
func NewMongoListRepository(db *mongo.Database) *MongoListRepository {
	return &MongoListRepository{collection: db.Collection("lists")}
}

// CreateList inserts a new list
func (r *MongoListRepository) CreateList(ctx context.Context, list *models.List) error {
	now := time.Now()
	list.ID = primitive.NewObjectID()
	list.CreatedAt = now
	list.UpdatedAt = now
	if list.Entries == nil {
		list.Entries = []models.ListEntry{}
	}
	_, err := r.collection.InsertOne(ctx, list)
	return err
}

// GetListByID retrieves a list by ID
func (r *MongoListRepository) GetListByID(ctx context.Context, id string) (*models.List, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var list models.List
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&list); err != nil {
		return nil, translate(err)
	}
	return &list, nil
}

// GetRecentPublicByUserIDs returns public lists by userIDs created at or after since, newest first
func (r *MongoListRepository) GetRecentPublicByUserIDs(ctx context.Context, userIDs []uint, since time.Time, limit int64) ([]models.List, error) {
	if len(userIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, publicListsFilter(userIDs, since), recentFirst("created_at", limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lists []models.List
	if err = cursor.All(ctx, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// IncrementCounter adds delta to a counter field such as comments_count
func (r *MongoListRepository) IncrementCounter(ctx context.Context, id, field string, delta int) error {
	return incrementCounter(ctx, r.collection, id, field, delta)
}

func publicListsFilter(userIDs []uint, since time.Time) bson.M {
	return bson.M{
		"user_id":    bson.M{"$in": userIDs},
		"is_public":  true,
		"created_at": bson.M{"$gte": since},
	}
}
