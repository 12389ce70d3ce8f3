package models

import "time"

// NotificationType enumerates the social actions that notify a user
type NotificationType string

const (
	NotificationNewFollower            NotificationType = "new_follower"
	NotificationListLike               NotificationType = "list_like"
	NotificationReviewLike             NotificationType = "review_like"
	NotificationCommentOnList          NotificationType = "comment_on_list"
	NotificationCommentOnReview        NotificationType = "comment_on_review"
	NotificationMentionInListComment   NotificationType = "mention_in_list_comment"
	NotificationMentionInReviewComment NotificationType = "mention_in_review_comment"
)

// Notification represents a user notification (PostgreSQL).
// Only IsRead changes after creation, and only from false to true.
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"index:idx_notification_recipient"`
	SenderID    uint             `json:"sender_id" gorm:"index"`
	Type        NotificationType `json:"type" gorm:"size:40;index"`
	Message     string           `json:"message"`
	Link        string           `json:"link"`
	TargetType  string           `json:"target_type" gorm:"size:20"` // list, review, movie, user
	TargetID    string           `json:"target_id"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index:idx_notification_recipient"`
}
