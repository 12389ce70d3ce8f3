package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	notifier         SocialNotifier
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, notifier SocialNotifier) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		notifier:         notifier,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/followers", h.GetFollowers)
}

// FollowUser follows a user and notifies them
func (h *FollowHandler) FollowUser(c echo.Context) error {
	actor, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}
	targetID, err := parseUserID(c)
	if err != nil {
		return err
	}
	if actor.ID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, err, "loading follow target")
	}

	follow := &models.Follow{FollowerID: actor.ID, FollowingID: targetID}
	if err := h.followRepository.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "Already following this user")
		}
		return internalError(c, err, "creating follow")
	}

	if err := h.notifier.NotifyFollow(ctx, actor, targetID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Uint("follower_id", actor.ID).
			Uint("following_id", targetID).
			Msg("follow notification failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser removes a follow. It never notifies.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	targetID, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.followRepository.DeleteFollow(c.Request().Context(), currentUserID, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Not following this user")
		}
		return internalError(c, err, "deleting follow")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// GetFollowing lists the users the given user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listRelations(c, h.followRepository.GetFollowing, "following")
}

// GetFollowers lists the users following the given user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listRelations(c, h.followRepository.GetFollowers, "followers")
}

func (h *FollowHandler) listRelations(c echo.Context, load func(ctx context.Context, userID uint) ([]models.User, error), key string) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, err, "loading user")
	}

	users, err := load(ctx, userID)
	if err != nil {
		return internalError(c, err, "loading "+key)
	}
	compacts := make([]models.UserCompact, len(users))
	for i := range users {
		compacts[i] = users[i].ToCompact()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{key: compacts},
		"meta":    echo.Map{"totalItems": len(compacts)},
	})
}
