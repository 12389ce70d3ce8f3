package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles likes on lists and reviews
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	userRepository repositories.UserRepository
	targets        targetResolver
	notifier       SocialNotifier
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	userRepo repositories.UserRepository,
	reviewRepo repositories.ReviewRepository,
	listRepo repositories.ListRepository,
	notifier SocialNotifier,
) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		userRepository: userRepo,
		targets:        targetResolver{reviews: reviewRepo, lists: listRepo},
		notifier:       notifier,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.GET("/lists/:id/likes", h.likeStatus(models.TargetList))
	g.POST("/lists/:id/likes", h.like(models.TargetList))
	g.DELETE("/lists/:id/likes", h.unlike(models.TargetList))
	g.GET("/reviews/:id/likes", h.likeStatus(models.TargetReview))
	g.POST("/reviews/:id/likes", h.like(models.TargetReview))
	g.DELETE("/reviews/:id/likes", h.unlike(models.TargetReview))
}

func (h *LikeHandler) like(targetType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := currentUser(c, h.userRepository)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		target, err := h.targets.resolve(ctx, targetType, c.Param("id"), actor.ID)
		if err != nil {
			return asHTTPError(c, err, "loading like target")
		}

		like := &models.Like{TargetType: target.Type, TargetID: target.ID, UserID: actor.ID}
		if err := h.likeRepository.CreateLike(ctx, like); err != nil {
			if errors.Is(err, repositories.ErrAlreadyExists) {
				return echo.NewHTTPError(http.StatusConflict, "Already liked")
			}
			return internalError(c, err, "creating like")
		}
		h.targets.incrementCounter(ctx, target, "likes_count", 1)

		if err := h.notifier.NotifyLike(ctx, actor, target); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Uint("user_id", actor.ID).
				Str("target_type", target.Type).
				Str("target_id", target.ID).
				Msg("like notification failed")
		}

		return h.respond(c, http.StatusCreated, target.Type, target.ID, true)
	}
}

func (h *LikeHandler) unlike(targetType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		currentUserID := getUserIDFromContext(c)
		if currentUserID == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
		ctx := c.Request().Context()
		target, err := h.targets.resolve(ctx, targetType, c.Param("id"), currentUserID)
		if err != nil {
			return asHTTPError(c, err, "loading like target")
		}

		if err := h.likeRepository.DeleteLike(ctx, target.Type, target.ID, currentUserID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Like not found")
			}
			return internalError(c, err, "deleting like")
		}
		h.targets.incrementCounter(ctx, target, "likes_count", -1)

		return h.respond(c, http.StatusOK, target.Type, target.ID, false)
	}
}

// likeStatus reports whether the caller liked the target, with the like count
func (h *LikeHandler) likeStatus(targetType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		currentUserID := getUserIDFromContext(c)
		if currentUserID == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
		ctx := c.Request().Context()
		target, err := h.targets.resolve(ctx, targetType, c.Param("id"), currentUserID)
		if err != nil {
			return asHTTPError(c, err, "loading like target")
		}

		liked, err := h.likeRepository.HasUserLiked(ctx, target.Type, target.ID, currentUserID)
		if err != nil {
			return internalError(c, err, "checking like")
		}
		return h.respond(c, http.StatusOK, target.Type, target.ID, liked)
	}
}

func (h *LikeHandler) respond(c echo.Context, status int, targetType, targetID string, liked bool) error {
	count, err := h.likeRepository.CountLikes(c.Request().Context(), targetType, targetID)
	if err != nil {
		return internalError(c, err, "counting likes")
	}
	return c.JSON(status, echo.Map{
		"success": true,
		"data": echo.Map{
			"liked":       liked,
			"likes_count": count,
		},
	})
}

// asHTTPError passes HTTP errors through and hides everything else
func asHTTPError(c echo.Context, err error, msg string) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return internalError(c, err, msg)
}
