package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moderation states for reviews
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// Review is a user's review of a movie stored in MongoDB
type Review struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           uint               `json:"user_id" bson:"user_id"`
	MovieID          primitive.ObjectID `json:"movie_id" bson:"movie_id"`
	MovieTitle       string             `json:"movie_title" bson:"movie_title"`
	Content          string             `json:"content" bson:"content"`
	Rating           float64            `json:"rating" bson:"rating"`
	IsPublished      bool               `json:"is_published" bson:"is_published"`
	ModerationStatus string             `json:"moderation_status" bson:"moderation_status"`
	LikesCount       int                `json:"likes_count" bson:"likes_count"`
	CommentsCount    int                `json:"comments_count" bson:"comments_count"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateReviewRequest defines the request body for publishing a review
type CreateReviewRequest struct {
	MovieID string  `json:"movie_id" validate:"required,len=24,hexadecimal"`
	Content string  `json:"content" validate:"required,min=1,max=5000"`
	Rating  float64 `json:"rating" validate:"min=0,max=5"`
	Draft   bool    `json:"draft"`
}
