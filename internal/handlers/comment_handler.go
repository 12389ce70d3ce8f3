package handlers

import (
	"net/http"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const commentPageSize = 100

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	userRepository    repositories.UserRepository
	targets           targetResolver
	notifier          SocialNotifier
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
	reviewRepo repositories.ReviewRepository,
	listRepo repositories.ListRepository,
	notifier SocialNotifier,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		userRepository:    userRepo,
		targets:           targetResolver{reviews: reviewRepo, lists: listRepo},
		notifier:          notifier,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/lists/:id/comments", h.createComment(models.TargetList))
	g.GET("/lists/:id/comments", h.getComments(models.TargetList))
	g.POST("/reviews/:id/comments", h.createComment(models.TargetReview))
	g.GET("/reviews/:id/comments", h.getComments(models.TargetReview))
}

// CommentWithAuthor is a comment with its author's compact profile
type CommentWithAuthor struct {
	models.Comment
	Author models.UserCompact `json:"author"`
}

func (h *CommentHandler) createComment(targetType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.CreateCommentRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		actor, err := currentUser(c, h.userRepository)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		target, err := h.targets.resolve(ctx, targetType, c.Param("id"), actor.ID)
		if err != nil {
			return asHTTPError(c, err, "loading comment target")
		}

		comment := &models.Comment{
			TargetType: target.Type,
			TargetID:   target.ID,
			UserID:     actor.ID,
			Content:    req.Content,
		}
		if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
			return internalError(c, err, "creating comment")
		}
		h.targets.incrementCounter(ctx, target, "comments_count", 1)

		notified, err := h.notifier.NotifyComment(ctx, actor, target, req.Content)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Uint("user_id", actor.ID).
				Str("target_type", target.Type).
				Str("target_id", target.ID).
				Int("notified", len(notified)).
				Msg("some comment notifications failed")
		}

		return c.JSON(http.StatusCreated, echo.Map{
			"success": true,
			"data": echo.Map{
				"comment": CommentWithAuthor{Comment: *comment, Author: actor.ToCompact()},
			},
			"meta": echo.Map{
				"notified": len(notified),
			},
		})
	}
}

func (h *CommentHandler) getComments(targetType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		target, err := h.targets.resolve(ctx, targetType, c.Param("id"), getUserIDFromContext(c))
		if err != nil {
			return asHTTPError(c, err, "loading comment target")
		}

		comments, err := h.commentRepository.GetCommentsByTarget(ctx, target.Type, target.ID, commentPageSize)
		if err != nil {
			return internalError(c, err, "loading comments")
		}

		authorIDs := make([]uint, 0, len(comments))
		for _, cm := range comments {
			authorIDs = append(authorIDs, cm.UserID)
		}
		authors := compactUsers(ctx, h.userRepository, authorIDs)

		out := make([]CommentWithAuthor, len(comments))
		for i, cm := range comments {
			author, ok := authors[cm.UserID]
			if !ok {
				author = models.UserCompact{ID: cm.UserID}
			}
			out[i] = CommentWithAuthor{Comment: cm, Author: author}
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"data":    echo.Map{"comments": out},
			"meta":    echo.Map{"totalItems": len(out)},
		})
	}
}
