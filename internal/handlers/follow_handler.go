package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/backend/internal/engine"
	"github.com/campuslink/backend/internal/repositories"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	engine           *engine.Engine
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(eng *engine.Engine, userRepo repositories.UserRepository, followRepo repositories.FollowRepository) *FollowHandler {
	return &FollowHandler{engine: eng, userRepository: userRepo, followRepository: followRepo}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	targetID, httpErr := parseObjectID(c, "id")
	if httpErr != nil {
		return httpErr
	}

	if err := h.engine.FollowUser(c.Request().Context(), user.ID, targetID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	targetID, httpErr := parseObjectID(c, "id")
	if httpErr != nil {
		return httpErr
	}

	if err := h.engine.UnfollowUser(c.Request().Context(), user.ID, targetID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// GetFollowers retrieves a user's followers set
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	targetID, httpErr := parseObjectID(c, "id")
	if httpErr != nil {
		return httpErr
	}

	target, err := h.userRepository.GetByID(c.Request().Context(), targetID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"followers": target.Followers, "count": target.CountFollowers})
}

// GetFollowing retrieves the users someone follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	targetID, httpErr := parseObjectID(c, "id")
	if httpErr != nil {
		return httpErr
	}

	follows, err := h.followRepository.ListFollowing(c.Request().Context(), targetID)
	if err != nil {
		return httpError(err)
	}

	following := make([]string, 0, len(follows))
	for _, f := range follows {
		following = append(following, f.Following.Hex())
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}
