package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T, repo NotificationRepository, recipient uint, n int) []models.Notification {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]models.Notification, n)
	for i := range out {
		out[i] = models.Notification{
			RecipientID: recipient,
			SenderID:    99,
			Type:        models.NotificationNewFollower,
			Message:     "someone started following you",
			Link:        "/users/someone",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateNotification(context.Background(), &out[i]))
	}
	return out
}

func TestNotificationRepository_PageNewestFirst(t *testing.T) {
	repo := NewPostgresNotificationRepository(newTestDB(t))
	ctx := context.Background()
	seeded := seedNotifications(t, repo, 1, 35)
	seedNotifications(t, repo, 2, 3)

	page1, total, err := repo.GetByRecipientID(ctx, 1, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(35), total)
	require.Len(t, page1, 30)
	assert.Equal(t, seeded[34].ID, page1[0].ID)
	for i := 1; i < len(page1); i++ {
		assert.False(t, page1[i].CreatedAt.After(page1[i-1].CreatedAt))
	}

	page2, _, err := repo.GetByRecipientID(ctx, 1, 2, 30)
	require.NoError(t, err)
	require.Len(t, page2, 5)
	assert.Equal(t, seeded[0].ID, page2[4].ID)
}

func TestNotificationRepository_MarkAsRead(t *testing.T) {
	repo := NewPostgresNotificationRepository(newTestDB(t))
	ctx := context.Background()
	n := seedNotifications(t, repo, 1, 1)[0]

	require.NoError(t, repo.MarkAsRead(ctx, n.ID, 1))
	require.NoError(t, repo.MarkAsRead(ctx, n.ID, 1))

	got, _, err := repo.GetByRecipientID(ctx, 1, 1, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsRead)
	assert.Equal(t, n.Message, got[0].Message)
	assert.Equal(t, n.Link, got[0].Link)

	assert.ErrorIs(t, repo.MarkAsRead(ctx, n.ID, 2), ErrNotFound)
	assert.ErrorIs(t, repo.MarkAsRead(ctx, 12345, 1), ErrNotFound)
}

func TestNotificationRepository_MarkAllAsReadIsIdempotent(t *testing.T) {
	repo := NewPostgresNotificationRepository(newTestDB(t))
	ctx := context.Background()
	seedNotifications(t, repo, 1, 4)
	seedNotifications(t, repo, 2, 2)

	count, err := repo.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	changed, err := repo.MarkAllAsRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), changed)

	changed, err = repo.MarkAllAsRead(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, changed)

	count, err = repo.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	other, err := repo.GetUnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), other)
}
