package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func newTestFeed(follows map[uint][]uint, users *fakeUsers, sources ...ActivitySource) *FeedService {
	cfg := DefaultFeedConfig()
	cfg.SourceTimeout = 50 * time.Millisecond
	svc := NewFeedService(NewSocialGraph(&fakeFollows{following: follows}), users, cfg, sources...)
	svc.now = func() time.Time { return base }
	return svc
}

func TestFollowingFeed_ThreeFollowedReviewers(t *testing.T) {
	users := newFakeUsers(
		models.User{ID: 10, Username: "ana"},
		models.User{ID: 11, Username: "ben"},
		models.User{ID: 12, Username: "cy"},
	)
	reviews := &fakeSource{name: "review", acts: []models.Activity{
		models.ReviewActivity{ID: "r-ben", ActorID: 11, OccurredAt: base.Add(-1 * time.Hour)},
		models.ReviewActivity{ID: "r-cy", ActorID: 12, OccurredAt: base.Add(-3 * time.Hour)},
		models.ReviewActivity{ID: "r-ana", ActorID: 10, OccurredAt: base.Add(-2 * time.Hour)},
	}}
	svc := newTestFeed(map[uint][]uint{1: {12, 10, 11}}, users, reviews, &fakeSource{name: "list"}, &fakeSource{name: "watched"})

	items, err := svc.FollowingFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 3)

	for _, it := range items {
		assert.Equal(t, models.ActivityReview, it.Type)
	}
	assert.Equal(t, "r-ben", items[0].Activity.ActivityID())
	assert.Equal(t, "r-ana", items[1].Activity.ActivityID())
	assert.Equal(t, "r-cy", items[2].Activity.ActivityID())
	assert.Equal(t, "ben", items[0].Actor.Username)
	assert.Equal(t, []uint{10, 11, 12}, reviews.got)
}

func TestFollowingFeed_FailingSourceIsSkipped(t *testing.T) {
	users := newFakeUsers(models.User{ID: 2, Username: "bo"})
	lists := &fakeSource{name: "list", acts: []models.Activity{
		models.ListActivity{ID: "l1", ActorID: 2, OccurredAt: base.Add(-time.Minute)},
	}}
	svc := newTestFeed(map[uint][]uint{1: {2}}, users,
		&fakeSource{name: "review", err: errBoom},
		lists,
		&fakeSource{name: "watched", delay: time.Second},
	)

	items, err := svc.FollowingFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ActivityList, items[0].Type)
}

func TestFollowingFeed_BoundedAndDeterministic(t *testing.T) {
	users := newFakeUsers(models.User{ID: 2, Username: "bo"})
	mk := func(kind string) *fakeSource {
		src := &fakeSource{name: kind}
		for i := 0; i < 15; i++ {
			at := base.Add(-time.Duration(i%4) * time.Minute)
			switch kind {
			case "review":
				src.acts = append(src.acts, models.ReviewActivity{ID: string(rune('a' + i)), ActorID: 2, OccurredAt: at})
			case "list":
				src.acts = append(src.acts, models.ListActivity{ID: string(rune('a' + i)), ActorID: 2, OccurredAt: at})
			default:
				src.acts = append(src.acts, models.WatchedActivity{ID: string(rune('a' + i)), ActorID: 2, OccurredAt: at})
			}
		}
		return src
	}
	svc := newTestFeed(map[uint][]uint{1: {2}}, users, mk("review"), mk("list"), mk("watched"))

	first, err := svc.FollowingFeed(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.FollowingFeed(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, first, 20)
	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].Activity.At().After(first[i-1].Activity.At()))
	}
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type)
		assert.Equal(t, first[i].Activity.ActivityID(), second[i].Activity.ActivityID())
	}
}

func TestFollowingFeed_NobodyFollowed(t *testing.T) {
	src := &fakeSource{name: "review"}
	svc := newTestFeed(map[uint][]uint{}, newFakeUsers(), src)

	items, err := svc.FollowingFeed(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Nil(t, src.got, "sources are not queried without followed users")
}

func TestFollowingFeed_GraphFailureIsReturned(t *testing.T) {
	svc := NewFeedService(NewSocialGraph(&fakeFollows{err: errBoom}), newFakeUsers(), DefaultFeedConfig())

	_, err := svc.FollowingFeed(context.Background(), 1)
	assert.ErrorIs(t, err, errBoom)
}

func TestFollowingFeed_ActorLookupFailureKeepsItems(t *testing.T) {
	users := newFakeUsers()
	users.err = errBoom
	src := &fakeSource{name: "review", acts: []models.Activity{
		models.ReviewActivity{ID: "r", ActorID: 7, OccurredAt: base},
	}}
	svc := newTestFeed(map[uint][]uint{1: {7}}, users, src)

	items, err := svc.FollowingFeed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(7), items[0].Actor.ID)
}

func TestSocialGraph_DedupesAndSorts(t *testing.T) {
	g := NewSocialGraph(&fakeFollows{following: map[uint][]uint{1: {5, 3, 5, 4}}})
	ids, err := g.FollowingOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 4, 5}, ids)

	ids, err = g.FollowingOf(context.Background(), 404)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
