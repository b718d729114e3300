package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/campuslink/backend/internal/realtime"
	"github.com/campuslink/backend/internal/repositories"
)

// WSHandler upgrades authenticated clients to the realtime signal stream
type WSHandler struct {
	hub            *realtime.Hub
	userRepository repositories.UserRepository
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *realtime.Hub, userRepo repositories.UserRepository) *WSHandler {
	return &WSHandler{hub: hub, userRepository: userRepo}
}

// RegisterWSRoutes registers the websocket route
func (h *WSHandler) RegisterWSRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect subscribes the authenticated user to live notification signals
func (h *WSHandler) Connect(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	return h.hub.ServeWS(c.Response(), c.Request(), user.ID.Hex())
}
