package models

import "time"

// Target types shared by likes, comments and notifications
const (
	TargetList   = "list"
	TargetReview = "review"
	TargetMovie  = "movie"
	TargetUser   = "user"
)

// Like represents a like on a list or a review. TargetID is the MongoDB ObjectID hex.
type Like struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TargetType string    `json:"target_type" gorm:"size:20;uniqueIndex:idx_like_target_user"`
	TargetID   string    `json:"target_id" gorm:"size:24;uniqueIndex:idx_like_target_user"`
	UserID     uint      `json:"user_id" gorm:"index;uniqueIndex:idx_like_target_user"`
	CreatedAt  time.Time `json:"created_at"`
}
