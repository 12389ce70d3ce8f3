package models

import "time"

// Comment represents a comment on a list or a review (PostgreSQL)
type Comment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TargetType string    `json:"target_type" gorm:"size:20;index:idx_comment_target"`
	TargetID   string    `json:"target_id" gorm:"size:24;index:idx_comment_target"`
	UserID     uint      `json:"user_id" gorm:"index"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateCommentRequest defines the request body for commenting on a list or review
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
