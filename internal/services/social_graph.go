package services

import (
	"context"
	"errors"
	"slices"

	"github.com/anonto42/cinefeed/backend/internal/repositories"
)

// SocialGraph is a read-only view over follow relationships
type SocialGraph struct {
	follows repositories.FollowRepository
}

// NewSocialGraph creates a SocialGraph
func NewSocialGraph(follows repositories.FollowRepository) *SocialGraph {
	return &SocialGraph{follows: follows}
}

// FollowingOf returns the distinct ids userID follows, ascending. A user that
// does not exist simply follows nobody.
func (g *SocialGraph) FollowingOf(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := g.follows.GetFollowingIDs(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
