package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
)

type fakeUsers struct {
	users map[uint]models.User
	err   error
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[uint]models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, u := range f.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == uid {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) GetUsersByUsernames(_ context.Context, names []string) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, u := range f.users {
		for _, n := range names {
			if u.Username == n {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

type fakeFollows struct {
	following map[uint][]uint
	err       error
}

func (f *fakeFollows) CreateFollow(context.Context, *models.Follow) error { return nil }
func (f *fakeFollows) DeleteFollow(context.Context, uint, uint) error     { return nil }
func (f *fakeFollows) IsFollowing(context.Context, uint, uint) (bool, error) {
	return false, nil
}
func (f *fakeFollows) GetFollowers(context.Context, uint) ([]models.User, error) { return nil, nil }
func (f *fakeFollows) GetFollowing(context.Context, uint) ([]models.User, error) { return nil, nil }
func (f *fakeFollows) GetFollowingIDs(_ context.Context, id uint) ([]uint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]uint(nil), f.following[id]...), nil
}

type fakeNotificationStore struct {
	mu     sync.Mutex
	nextID uint
	items  []models.Notification
	err    error
}

func (f *fakeNotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	n.ID = f.nextID
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotificationStore) GetByRecipientID(context.Context, uint, int, int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (f *fakeNotificationStore) GetUnreadCount(context.Context, uint) (int64, error) { return 0, nil }
func (f *fakeNotificationStore) MarkAsRead(context.Context, uint, uint) error      { return nil }
func (f *fakeNotificationStore) MarkAllAsRead(context.Context, uint) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationStore) all() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.items...)
}

type emitted struct {
	userID uint
	event  string
}

type fakeRouter struct {
	mu    sync.Mutex
	calls []emitted
	err   error
}

func (f *fakeRouter) EmitToUser(_ context.Context, userID uint, event string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, emitted{userID: userID, event: event})
	return f.err
}

func (f *fakeRouter) emitted() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emitted(nil), f.calls...)
}

type fakeSource struct {
	name  string
	acts  []models.Activity
	err   error
	delay time.Duration
	got   []uint
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, actorIDs []uint, _ time.Time, limit int) ([]models.Activity, error) {
	f.got = actorIDs
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.acts) > limit {
		return f.acts[:limit], nil
	}
	return f.acts, nil
}

var errBoom = errors.New("boom")
