package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/middleware"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"github.com/anonto42/cinefeed/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user id, or 0
func getUserIDFromContext(c echo.Context) uint {
	id, _ := middleware.UserIDFromContext(c)
	return id
}

func parseUserID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	return uint(id), nil
}

// currentUser loads the authenticated account
func currentUser(c echo.Context, users repositories.UserRepository) (*models.User, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	user, err := users.GetUserByID(c.Request().Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User account no longer exists")
	}
	if err != nil {
		return nil, internalError(c, err, "loading current user")
	}
	return user, nil
}

// internalError logs err and hides it from the client
func internalError(c echo.Context, err error, msg string) error {
	logging.Ctx(c.Request().Context()).Error().Err(err).Str("path", c.Path()).Msg(msg)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// bindAndValidate binds the request body into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// compactUsers loads the compact profiles of ids, ignoring unknown users
func compactUsers(ctx context.Context, users repositories.UserRepository, ids []uint) map[uint]models.UserCompact {
	out := make(map[uint]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return out
	}
	found, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("loading user profiles failed")
		return out
	}
	for i := range found {
		out[found[i].ID] = found[i].ToCompact()
	}
	return out
}

// targetResolver loads the list or review a like or comment is aimed at.
// Content the viewer may not see resolves as not found: private lists and
// unpublished or unapproved reviews are only visible to their owner.
type targetResolver struct {
	reviews repositories.ReviewRepository
	lists   repositories.ListRepository
}

func (r targetResolver) resolve(ctx context.Context, targetType, id string, viewerID uint) (services.Target, error) {
	switch targetType {
	case models.TargetReview:
		review, err := r.reviews.GetReviewByID(ctx, id)
		if err != nil {
			return services.Target{}, targetError(err, "Review not found")
		}
		visible := review.IsPublished && review.ModerationStatus == models.ModerationApproved
		if !visible && review.UserID != viewerID {
			return services.Target{}, echo.NewHTTPError(http.StatusNotFound, "Review not found")
		}
		return services.Target{
			Type:    models.TargetReview,
			ID:      review.ID.Hex(),
			OwnerID: review.UserID,
			Title:   review.MovieTitle,
			MovieID: review.MovieID.Hex(),
		}, nil
	default:
		list, err := r.lists.GetListByID(ctx, id)
		if err != nil {
			return services.Target{}, targetError(err, "List not found")
		}
		if !list.IsPublic && list.UserID != viewerID {
			return services.Target{}, echo.NewHTTPError(http.StatusNotFound, "List not found")
		}
		return services.Target{
			Type:    models.TargetList,
			ID:      list.ID.Hex(),
			OwnerID: list.UserID,
			Title:   list.Title,
		}, nil
	}
}

func (r targetResolver) incrementCounter(ctx context.Context, t services.Target, field string, delta int) {
	var err error
	if t.Type == models.TargetReview {
		err = r.reviews.IncrementCounter(ctx, t.ID, field, delta)
	} else {
		err = r.lists.IncrementCounter(ctx, t.ID, field, delta)
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("target_type", t.Type).Str("target_id", t.ID).Str("field", field).Msg("updating counter failed")
	}
}

func targetError(err error, notFound string) error {
	switch {
	case errors.Is(err, repositories.ErrInvalidID), errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	default:
		return err
	}
}
