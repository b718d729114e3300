package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/backend/internal/engine"
	"github.com/campuslink/backend/internal/repositories"
)

// LikeHandler handles HTTP requests for likes and favorites
type LikeHandler struct {
	engine         *engine.Engine
	userRepository repositories.UserRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(eng *engine.Engine, userRepo repositories.UserRepository) *LikeHandler {
	return &LikeHandler{engine: eng, userRepository: userRepo}
}

// RegisterLikeRoutes registers like- and favorite-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.POST("/posts/:post_id/favorites", h.AddToFavorites)
	g.DELETE("/posts/:post_id/favorites", h.RemoveFromFavorites)
}

// LikePost handles liking a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	postID, httpErr := parseObjectID(c, "post_id")
	if httpErr != nil {
		return httpErr
	}

	updated, err := h.engine.LikePost(c.Request().Context(), user.ID, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	postID, httpErr := parseObjectID(c, "post_id")
	if httpErr != nil {
		return httpErr
	}

	updated, err := h.engine.UnlikePost(c.Request().Context(), user.ID, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// AddToFavorites bookmarks a post for the authenticated user
func (h *LikeHandler) AddToFavorites(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	postID, httpErr := parseObjectID(c, "post_id")
	if httpErr != nil {
		return httpErr
	}

	updated, err := h.engine.AddToFavorites(c.Request().Context(), user.ID, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// RemoveFromFavorites removes a bookmark
func (h *LikeHandler) RemoveFromFavorites(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	postID, httpErr := parseObjectID(c, "post_id")
	if httpErr != nil {
		return httpErr
	}

	updated, err := h.engine.RemoveFromFavorites(c.Request().Context(), user.ID, postID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}
