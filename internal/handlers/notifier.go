package handlers

import (
	"context"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/services"
)

// SocialNotifier turns social actions into notifications. *services.Notifier satisfies it.
type SocialNotifier interface {
	NotifyFollow(ctx context.Context, follower *models.User, followeeID uint) error
	NotifyLike(ctx context.Context, liker *models.User, target services.Target) error
	NotifyComment(ctx context.Context, commenter *models.User, target services.Target, body string) ([]*models.Notification, error)
}

var _ SocialNotifier = (*services.Notifier)(nil)
