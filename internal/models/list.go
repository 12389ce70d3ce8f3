package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListEntry is one ranked movie inside a list
type ListEntry struct {
	MovieID primitive.ObjectID `json:"movie_id" bson:"movie_id"`
	Rank    int                `json:"rank" bson:"rank"`
}

// List is a user-curated, ranked movie list stored in MongoDB
type List struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"user_id" bson:"user_id"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	IsPublic      bool               `json:"is_public" bson:"is_public"`
	Entries       []ListEntry        `json:"entries" bson:"entries"`
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateListRequest defines the request body for creating a list
type CreateListRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=120"`
	Description string   `json:"description" validate:"max=2000"`
	IsPublic    bool     `json:"is_public"`
	MovieIDs    []string `json:"movie_ids" validate:"max=500,dive,len=24,hexadecimal"`
}
