package services

import (
	"context"
	"errors"

	"github.com/anonto42/cinefeed/backend/internal/models"
)

// Target describes the list or review a like or comment applies to
type Target struct {
	Type    string // models.TargetList or models.TargetReview
	ID      string
	OwnerID uint
	Title   string // list title, or the reviewed movie's title
	MovieID string // reviewed movie, empty for lists
}

func (t Target) context(sender *models.User) NotificationContext {
	return NotificationContext{
		SenderUsername: sender.Username,
		TargetID:       t.ID,
		TargetTitle:    t.Title,
		MovieID:        t.MovieID,
	}
}

// Notifier turns social actions into notifications: it picks recipients,
// builds each record through the factory and hands it to the dispatcher.
type Notifier struct {
	factory    *NotificationFactory
	dispatcher *NotificationDispatcher
	mentions   *MentionResolver
}

// NewNotifier creates a Notifier
func NewNotifier(factory *NotificationFactory, dispatcher *NotificationDispatcher, mentions *MentionResolver) *Notifier {
	return &Notifier{factory: factory, dispatcher: dispatcher, mentions: mentions}
}

// Notify creates and dispatches a single notification. A suppressed
// notification is not an error. The work is detached from ctx cancellation so
// an abandoned request still records the notification.
func (n *Notifier) Notify(ctx context.Context, recipientID uint, sender *models.User, typ models.NotificationType, nc NotificationContext) (*models.Notification, error) {
	notif, err := n.factory.Create(recipientID, sender.ID, typ, nc)
	if errors.Is(err, ErrSuppressed) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := n.dispatcher.Dispatch(context.WithoutCancel(ctx), notif); err != nil {
		return nil, err
	}
	return notif, nil
}

// NotifyFollow tells followeeID that follower started following them
func (n *Notifier) NotifyFollow(ctx context.Context, follower *models.User, followeeID uint) error {
	_, err := n.Notify(ctx, followeeID, follower, models.NotificationNewFollower,
		NotificationContext{SenderUsername: follower.Username})
	return err
}

// NotifyLike tells the owner of target that liker liked it
func (n *Notifier) NotifyLike(ctx context.Context, liker *models.User, target Target) error {
	typ := models.NotificationListLike
	if target.Type == models.TargetReview {
		typ = models.NotificationReviewLike
	}
	_, err := n.Notify(ctx, target.OwnerID, liker, typ, target.context(liker))
	return err
}

// NotifyComment notifies the owner of target about a new comment and every
// user mentioned in body. Each recipient gets at most one notification: the
// owner only receives the comment notification and the commenter nothing.
// Returns the notifications created; errors for individual recipients are
// joined and do not stop the others.
func (n *Notifier) NotifyComment(ctx context.Context, commenter *models.User, target Target, body string) ([]*models.Notification, error) {
	commentType, mentionType := models.NotificationCommentOnList, models.NotificationMentionInListComment
	if target.Type == models.TargetReview {
		commentType, mentionType = models.NotificationCommentOnReview, models.NotificationMentionInReviewComment
	}
	nc := target.context(commenter)

	var (
		created []*models.Notification
		errs    []error
	)
	notified := map[uint]bool{commenter.ID: true}

	if !notified[target.OwnerID] {
		notified[target.OwnerID] = true
		notif, err := n.Notify(ctx, target.OwnerID, commenter, commentType, nc)
		if err != nil {
			errs = append(errs, err)
		} else if notif != nil {
			created = append(created, notif)
		}
	}

	mentioned, err := n.mentions.Resolve(ctx, ExtractMentions(body))
	if err != nil {
		errs = append(errs, err)
	}
	for i := range mentioned {
		u := &mentioned[i]
		if notified[u.ID] {
			continue
		}
		notified[u.ID] = true
		notif, err := n.Notify(ctx, u.ID, commenter, mentionType, nc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if notif != nil {
			created = append(created, notif)
		}
	}
	return created, errors.Join(errs...)
}
