package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// FollowingFeed builds the following feed of a user
type FollowingFeed interface {
	FollowingFeed(ctx context.Context, userID uint) ([]models.FeedItem, error)
}

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feed FollowingFeed
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed FollowingFeed) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed/following", h.GetFollowingFeed)
}

// GetFollowingFeed returns the recent activity of everyone the user follows
func (h *FeedHandler) GetFollowingFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	items, err := h.feed.FollowingFeed(c.Request().Context(), currentUserID)
	if err != nil {
		return internalError(c, err, "building following feed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"items": items,
		},
		"meta": echo.Map{
			"count": len(items),
		},
	})
}
