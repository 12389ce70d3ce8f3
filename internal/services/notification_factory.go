package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/metrics"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/valyala/fasttemplate"
)

var (
	// ErrSuppressed is returned by Create when the notification must not exist,
	// e.g. a user acting on their own content.
	ErrSuppressed = errors.New("notification suppressed")
	// ErrUnknownNotificationType is returned for a type without a template
	ErrUnknownNotificationType = errors.New("unknown notification type")
)

// NotificationContext carries the values a notification template may reference
type NotificationContext struct {
	SenderUsername string
	TargetID       string // list or review id
	TargetTitle    string // list title or reviewed movie title
	MovieID        string
}

type notificationTemplate struct {
	message    *fasttemplate.Template
	link       *fasttemplate.Template
	targetType string
	targetID   func(senderID uint, nc NotificationContext) string
}

func byTarget(_ uint, nc NotificationContext) string { return nc.TargetID }
func bySender(senderID uint, _ NotificationContext) string {
	return strconv.FormatUint(uint64(senderID), 10)
}

func newTemplate(message, link, targetType string, targetID func(uint, NotificationContext) string) notificationTemplate {
	return notificationTemplate{
		message:    fasttemplate.New(message, "{", "}"),
		link:       fasttemplate.New(link, "{", "}"),
		targetType: targetType,
		targetID:   targetID,
	}
}

// NotificationFactory builds notification records for social actions. It is
// the single place where self-notification is suppressed.
type NotificationFactory struct {
	templates map[models.NotificationType]notificationTemplate
	now       func() time.Time
}

// NewNotificationFactory creates a factory with the built-in templates
func NewNotificationFactory() *NotificationFactory {
	return &NotificationFactory{
		templates: map[models.NotificationType]notificationTemplate{
			models.NotificationNewFollower: newTemplate(
				"{sender} started following you", "/users/{sender_id}", models.TargetUser, bySender),
			models.NotificationListLike: newTemplate(
				`{sender} liked your list "{title}"`, "/lists/{target}", models.TargetList, byTarget),
			models.NotificationReviewLike: newTemplate(
				`{sender} liked your review of "{title}"`, "/movies/{movie}", models.TargetReview, byTarget),
			models.NotificationCommentOnList: newTemplate(
				`{sender} commented on your list "{title}"`, "/lists/{target}", models.TargetList, byTarget),
			models.NotificationCommentOnReview: newTemplate(
				`{sender} commented on your review of "{title}"`, "/movies/{movie}", models.TargetReview, byTarget),
			models.NotificationMentionInListComment: newTemplate(
				`{sender} mentioned you in a comment on the list "{title}"`, "/lists/{target}", models.TargetList, byTarget),
			models.NotificationMentionInReviewComment: newTemplate(
				`{sender} mentioned you in a comment on a review of "{title}"`, "/movies/{movie}", models.TargetReview, byTarget),
		},
		now: time.Now,
	}
}

// Create renders the notification for recipientID about an action by senderID.
// It returns ErrSuppressed when both are the same user.
func (f *NotificationFactory) Create(recipientID, senderID uint, typ models.NotificationType, nc NotificationContext) (*models.Notification, error) {
	tpl, ok := f.templates[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNotificationType, typ)
	}
	if recipientID == senderID {
		metrics.NotificationsSuppressed.WithLabelValues(string(typ)).Inc()
		return nil, ErrSuppressed
	}

	values := map[string]any{
		"sender":    orDefault(nc.SenderUsername, "Someone"),
		"sender_id": strconv.FormatUint(uint64(senderID), 10),
		"title":     orDefault(nc.TargetTitle, "untitled"),
		"target":    nc.TargetID,
		"movie":     nc.MovieID,
	}
	return &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		Message:     tpl.message.ExecuteString(values),
		Link:        tpl.link.ExecuteString(values),
		TargetType:  tpl.targetType,
		TargetID:    tpl.targetID(senderID, nc),
		IsRead:      false,
		CreatedAt:   f.now(),
	}, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
