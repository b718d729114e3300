package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/backend/internal/engine"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/repositories"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	engine         *engine.Engine
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(eng *engine.Engine, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *PostHandler {
	return &PostHandler{engine: eng, postRepository: postRepo, userRepository: userRepo}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:post_id", h.GetPost)
	g.DELETE("/posts/:post_id", h.DeletePost)
	g.GET("/users/:id/posts", h.GetPostsByUser)
}

// CreatePost creates a new post for the authenticated user
func (h *PostHandler) CreatePost(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.engine.CreatePost(c.Request().Context(), user.ID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPosts retrieves recent posts, optionally before a given date
func (h *PostHandler) GetPosts(c echo.Context) error {
	var before time.Time
	if dateParam := c.QueryParam("date"); dateParam != "" {
		parsed, err := time.Parse(time.RFC3339, dateParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date, expected RFC3339")
		}
		before = parsed
	}

	limit := int64(10)
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		parsed, err := strconv.ParseInt(limitParam, 10, 64)
		if err != nil || parsed < 1 || parsed > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = parsed
	}

	posts, err := h.postRepository.List(c.Request().Context(), before, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a single post by id
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, httpErr := parseObjectID(c, "post_id")
	if httpErr != nil {
		return httpErr
	}

	post, err := h.postRepository.GetByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPostsByUser retrieves a user's posts, newest first
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	userID, httpErr := parseObjectID(c, "id")
	if httpErr != nil {
		return httpErr
	}
	if _, err := h.userRepository.GetByID(c.Request().Context(), userID); err != nil {
		return httpError(err)
	}

	var skip int64
	if skipParam := c.QueryParam("skip"); skipParam != "" {
		parsed, err := strconv.ParseInt(skipParam, 10, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid skip")
		}
		skip = parsed
	}

	posts, err := h.postRepository.ListByUserID(c.Request().Context(), userID, skip, 20)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// DeletePost deletes a post owned by the authenticated user
func (h *PostHandler) DeletePost(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	postID, httpErr := parseObjectID(c, "post_id")
	if httpErr != nil {
		return httpErr
	}

	if err := h.engine.DeletePost(c.Request().Context(), user.ID, postID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
