package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentHandler creates the reviews, lists and watched markers that feed activity
type ContentHandler struct {
	movieRepository   repositories.MovieRepository
	reviewRepository  repositories.ReviewRepository
	listRepository    repositories.ListRepository
	watchedRepository repositories.WatchedRepository
	autoApprove       bool
}

// NewContentHandler creates a new ContentHandler. With autoApprove reviews
// skip the moderation queue.
func NewContentHandler(
	movieRepo repositories.MovieRepository,
	reviewRepo repositories.ReviewRepository,
	listRepo repositories.ListRepository,
	watchedRepo repositories.WatchedRepository,
	autoApprove bool,
) *ContentHandler {
	return &ContentHandler{
		movieRepository:   movieRepo,
		reviewRepository:  reviewRepo,
		listRepository:    listRepo,
		watchedRepository: watchedRepo,
		autoApprove:       autoApprove,
	}
}

// RegisterContentRoutes registers content creation routes
func (h *ContentHandler) RegisterContentRoutes(g *echo.Group) {
	g.POST("/reviews", h.CreateReview)
	g.POST("/lists", h.CreateList)
	g.POST("/movies/:id/watched", h.MarkWatched)
}

func (h *ContentHandler) loadMovie(c echo.Context, id string) (*models.Movie, error) {
	movie, err := h.movieRepository.GetMovieByID(c.Request().Context(), id)
	switch {
	case errors.Is(err, repositories.ErrInvalidID):
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid movie ID")
	case errors.Is(err, repositories.ErrNotFound):
		return nil, echo.NewHTTPError(http.StatusNotFound, "Movie not found")
	case err != nil:
		return nil, internalError(c, err, "loading movie")
	}
	return movie, nil
}

// CreateReview publishes (or drafts) a review of a movie
func (h *ContentHandler) CreateReview(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	var req models.CreateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	movie, err := h.loadMovie(c, req.MovieID)
	if err != nil {
		return err
	}

	status := models.ModerationPending
	if h.autoApprove {
		status = models.ModerationApproved
	}
	review := &models.Review{
		UserID:           currentUserID,
		MovieID:          movie.ID,
		MovieTitle:       movie.Title,
		Content:          req.Content,
		Rating:           req.Rating,
		IsPublished:      !req.Draft,
		ModerationStatus: status,
	}
	if err := h.reviewRepository.CreateReview(c.Request().Context(), review); err != nil {
		return internalError(c, err, "creating review")
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"review": review}})
}

// CreateList creates a ranked movie list; movies keep the order given
func (h *ContentHandler) CreateList(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	var req models.CreateListRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entries := make([]models.ListEntry, 0, len(req.MovieIDs))
	for i, id := range req.MovieIDs {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid movie ID")
		}
		entries = append(entries, models.ListEntry{MovieID: objID, Rank: i + 1})
	}

	list := &models.List{
		UserID:      currentUserID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Entries:     entries,
	}
	if err := h.listRepository.CreateList(c.Request().Context(), list); err != nil {
		return internalError(c, err, "creating list")
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"list": list}})
}

// MarkWatched records that the user watched a movie, refreshing the date on repeat
func (h *ContentHandler) MarkWatched(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	var req models.MarkWatchedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	movie, err := h.loadMovie(c, c.Param("id"))
	if err != nil {
		return err
	}

	entry := &models.WatchedEntry{
		UserID:  currentUserID,
		MovieID: movie.ID,
		Rating:  req.Rating,
	}
	if err := h.watchedRepository.MarkWatched(c.Request().Context(), entry); err != nil {
		return internalError(c, err, "marking movie watched")
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"watched": entry}})
}
