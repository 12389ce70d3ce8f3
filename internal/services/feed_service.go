package services

import (
	"context"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/metrics"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// FeedConfig bounds one following-feed build
type FeedConfig struct {
	Limit         int           // items returned
	SourceLimit   int           // items taken from each source before merging
	Lookback      time.Duration // recency window
	SourceTimeout time.Duration // per-source deadline
}

// DefaultFeedConfig returns the production feed bounds
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		Limit:         20,
		SourceLimit:   10,
		Lookback:      30 * 24 * time.Hour,
		SourceTimeout: 3 * time.Second,
	}
}

// FeedService builds the following feed of a user
type FeedService struct {
	graph   *SocialGraph
	sources []ActivitySource
	users   repositories.UserRepository
	cfg     FeedConfig
	now     func() time.Time
}

// NewFeedService creates a FeedService over the given activity sources
func NewFeedService(graph *SocialGraph, users repositories.UserRepository, cfg FeedConfig, sources ...ActivitySource) *FeedService {
	return &FeedService{
		graph:   graph,
		sources: sources,
		users:   users,
		cfg:     cfg,
		now:     time.Now,
	}
}

// FollowingFeed returns the merged recent activity of everyone userID follows.
// A failing or slow source contributes nothing instead of failing the feed.
func (s *FeedService) FollowingFeed(ctx context.Context, userID uint) ([]models.FeedItem, error) {
	start := time.Now()
	defer func() { metrics.FeedBuildDuration.Observe(time.Since(start).Seconds()) }()

	following, err := s.graph.FollowingOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return []models.FeedItem{}, nil
	}

	since := s.now().Add(-s.cfg.Lookback)
	streams := make([][]models.Activity, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
			defer cancel()

			acts, err := src.Fetch(sctx, following, since, s.cfg.SourceLimit)
			if err != nil {
				metrics.FeedSourceFailures.WithLabelValues(src.Name()).Inc()
				logging.Ctx(ctx).Warn().Err(err).
					Str("source", src.Name()).
					Uint("user_id", userID).
					Msg("activity source failed, continuing without it")
				return nil
			}
			streams[i] = capActivities(acts, s.cfg.SourceLimit)
			return nil
		})
	}
	_ = g.Wait()

	merged := MergeActivities(streams, s.cfg.Limit)
	return s.render(ctx, merged), nil
}

// render attaches the compact actor profile to each activity
func (s *FeedService) render(ctx context.Context, acts []models.Activity) []models.FeedItem {
	actorIDs := make([]uint, 0, len(acts))
	seen := make(map[uint]bool, len(acts))
	for _, a := range acts {
		if !seen[a.Actor()] {
			seen[a.Actor()] = true
			actorIDs = append(actorIDs, a.Actor())
		}
	}

	actors := make(map[uint]models.UserCompact, len(actorIDs))
	users, err := s.users.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("loading feed actors failed, returning ids only")
	}
	for i := range users {
		actors[users[i].ID] = users[i].ToCompact()
	}

	items := make([]models.FeedItem, 0, len(acts))
	for _, a := range acts {
		actor, ok := actors[a.Actor()]
		if !ok {
			actor = models.UserCompact{ID: a.Actor()}
		}
		items = append(items, models.FeedItem{Type: a.Kind(), Actor: actor, Activity: a})
	}
	return items
}
