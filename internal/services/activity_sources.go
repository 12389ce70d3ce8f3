package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const excerptLength = 280

// ActivitySource produces the recent, publicly visible activity of a set of
// actors, newest first and at most limit records long.
type ActivitySource interface {
	Name() string
	Fetch(ctx context.Context, actorIDs []uint, since time.Time, limit int) ([]models.Activity, error)
}

// ReviewSource emits ReviewActivity for published, moderation-approved reviews
type ReviewSource struct {
	reviews repositories.ReviewRepository
}

func NewReviewSource(reviews repositories.ReviewRepository) *ReviewSource {
	return &ReviewSource{reviews: reviews}
}

func (s *ReviewSource) Name() string { return string(models.ActivityReview) }

func (s *ReviewSource) Fetch(ctx context.Context, actorIDs []uint, since time.Time, limit int) ([]models.Activity, error) {
	reviews, err := s.reviews.GetRecentVisibleByUserIDs(ctx, actorIDs, since, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("fetching reviews: %w", err)
	}
	out := make([]models.Activity, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, models.ReviewActivity{
			ID:         r.ID.Hex(),
			ActorID:    r.UserID,
			Movie:      models.MovieRef{ID: r.MovieID.Hex(), Title: r.MovieTitle},
			Excerpt:    excerpt(r.Content),
			Rating:     r.Rating,
			OccurredAt: r.CreatedAt,
		})
	}
	return capActivities(out, limit), nil
}

// ListSource emits ListActivity for public lists
type ListSource struct {
	lists repositories.ListRepository
}

func NewListSource(lists repositories.ListRepository) *ListSource {
	return &ListSource{lists: lists}
}

func (s *ListSource) Name() string { return string(models.ActivityList) }

func (s *ListSource) Fetch(ctx context.Context, actorIDs []uint, since time.Time, limit int) ([]models.Activity, error) {
	lists, err := s.lists.GetRecentPublicByUserIDs(ctx, actorIDs, since, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("fetching lists: %w", err)
	}
	out := make([]models.Activity, 0, len(lists))
	for _, l := range lists {
		out = append(out, models.ListActivity{
			ID:         l.ID.Hex(),
			ActorID:    l.UserID,
			ListID:     l.ID.Hex(),
			Title:      l.Title,
			MovieCount: len(l.Entries),
			OccurredAt: l.CreatedAt,
		})
	}
	return capActivities(out, limit), nil
}

// WatchedSource emits WatchedActivity for actors whose profile shows watched
// movies. Entries whose movie has been removed from the catalog are dropped.
type WatchedSource struct {
	watched repositories.WatchedRepository
	movies  repositories.MovieRepository
	users   repositories.UserRepository
}

func NewWatchedSource(watched repositories.WatchedRepository, movies repositories.MovieRepository, users repositories.UserRepository) *WatchedSource {
	return &WatchedSource{watched: watched, movies: movies, users: users}
}

func (s *WatchedSource) Name() string { return string(models.ActivityWatched) }

func (s *WatchedSource) Fetch(ctx context.Context, actorIDs []uint, since time.Time, limit int) ([]models.Activity, error) {
	users, err := s.users.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		return nil, fmt.Errorf("loading actor profiles: %w", err)
	}
	visible := make([]uint, 0, len(users))
	for _, u := range users {
		if u.ShowWatched {
			visible = append(visible, u.ID)
		}
	}
	if len(visible) == 0 {
		return nil, nil
	}

	entries, err := s.watched.GetRecentByUserIDs(ctx, visible, since, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("fetching watched entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	movieIDs := make([]primitive.ObjectID, 0, len(entries))
	for _, e := range entries {
		movieIDs = append(movieIDs, e.MovieID)
	}
	movies, err := s.movies.GetMoviesByIDs(ctx, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving watched movies: %w", err)
	}

	out := make([]models.Activity, 0, len(entries))
	for _, e := range entries {
		movie, ok := movies[e.MovieID]
		if !ok {
			continue
		}
		out = append(out, models.WatchedActivity{
			ID:         e.ID.Hex(),
			ActorID:    e.UserID,
			Movie:      models.MovieRef{ID: movie.ID.Hex(), Title: movie.Title, PosterPath: movie.PosterPath},
			Rating:     e.Rating,
			OccurredAt: e.WatchedAt,
		})
	}
	return capActivities(out, limit), nil
}

func excerpt(content string) string {
	if utf8.RuneCountInString(content) <= excerptLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:excerptLength]) + "…"
}

func capActivities(acts []models.Activity, limit int) []models.Activity {
	if limit >= 0 && len(acts) > limit {
		return acts[:limit]
	}
	return acts
}
