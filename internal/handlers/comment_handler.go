package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/backend/internal/engine"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	engine            *engine.Engine
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(eng *engine.Engine, commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		engine:            eng,
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	postID, httpErr := parseObjectID(c, "post_id")
	if httpErr != nil {
		return httpErr
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.engine.CreateComment(c.Request().Context(), user.ID, postID, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID retrieves all comments for a specific post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, httpErr := parseObjectID(c, "post_id")
	if httpErr != nil {
		return httpErr
	}

	if _, err := h.postRepository.GetByID(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}

	comments, err := h.commentRepository.ListByPost(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment deletes a comment authored by the authenticated user
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	commentID, httpErr := parseObjectID(c, "id")
	if httpErr != nil {
		return httpErr
	}

	if err := h.engine.DeleteComment(c.Request().Context(), user.ID, commentID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
