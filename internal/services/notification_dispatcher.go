package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/metrics"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
)

// EventNotification is the realtime event name carrying a new notification
const EventNotification = "notification"

// ErrPersistence wraps a failed notification insert
var ErrPersistence = errors.New("persisting notification")

// RealtimeRouter delivers an event to every live connection of a user.
// Delivering to a user with no connection is a silent no-op.
type RealtimeRouter interface {
	EmitToUser(ctx context.Context, userID uint, event string, payload any) error
}

// NotificationDispatcher stores notifications and pushes them to connected clients
type NotificationDispatcher struct {
	store       repositories.NotificationRepository
	router      RealtimeRouter
	pushTimeout time.Duration
	wg          sync.WaitGroup
}

// NewNotificationDispatcher creates a dispatcher. router may be nil to disable push.
func NewNotificationDispatcher(store repositories.NotificationRepository, router RealtimeRouter) *NotificationDispatcher {
	return &NotificationDispatcher{store: store, router: router, pushTimeout: 5 * time.Second}
}

// Dispatch persists n and then pushes it in the background. Only the insert
// can fail the call; push problems are logged and counted.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, n *models.Notification) error {
	if err := d.store.CreateNotification(ctx, n); err != nil {
		metrics.NotificationPersistFailures.Inc()
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	if d.router != nil {
		d.push(*n)
	}
	return nil
}

func (d *NotificationDispatcher) push(n models.Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.RealtimePushes.WithLabelValues(metrics.PushFailed).Inc()
				logging.Error().Interface("panic", r).Uint("notification_id", n.ID).Msg("realtime push panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.pushTimeout)
		defer cancel()
		if err := d.router.EmitToUser(ctx, n.RecipientID, EventNotification, n); err != nil {
			metrics.RealtimePushes.WithLabelValues(metrics.PushFailed).Inc()
			logging.Warn().Err(err).
				Uint("recipient_id", n.RecipientID).
				Uint("notification_id", n.ID).
				Msg("realtime push failed, notification stays stored")
		}
	}()
}

// Wait blocks until in-flight pushes finish
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}
