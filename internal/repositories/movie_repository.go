package repositories

import (
	"context"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MovieRepository is the read side of the movie catalog
type MovieRepository interface {
	GetMovieByID(ctx context.Context, id string) (*models.Movie, error)
	GetMoviesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Movie, error)
}

// MongoMovieRepository implements MovieRepository for MongoDB
type MongoMovieRepository struct {
	collection *mongo.Collection
}

// NewMongoMovieRepository creates a new MongoMovieRepository
func NewMongoMovieRepository(db *mongo.Database) *MongoMovieRepository {
	return &MongoMovieRepository{collection: db.Collection("movies")}
}

// GetMovieByID retrieves a movie by its hex ID
func (r *MongoMovieRepository) GetMovieByID(ctx context.Context, id string) (*models.Movie, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var movie models.Movie
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&movie); err != nil {
		return nil, translate(err)
	}
	return &movie, nil
}

// GetMoviesByIDs returns the movies that still exist among ids, keyed by ID
func (r *MongoMovieRepository) GetMoviesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Movie, error) {
	out := make(map[primitive.ObjectID]models.Movie, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var movies []models.Movie
	if err = cursor.All(ctx, &movies); err != nil {
		return nil, err
	}
	for _, m := range movies {
		out[m.ID] = m
	}
	return out, nil
}
