package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WatchedEntry marks a movie as watched by a user (MongoDB)
type WatchedEntry struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	MovieID   primitive.ObjectID `json:"movie_id" bson:"movie_id"`
	Rating    *float64           `json:"rating,omitempty" bson:"rating,omitempty"`
	WatchedAt time.Time          `json:"watched_at" bson:"watched_at"`
}

// MarkWatchedRequest defines the request body for marking a movie watched
type MarkWatchedRequest struct {
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
}
