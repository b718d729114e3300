package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/repositories"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo, userRepository: userRepo}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread/count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications retrieves the authenticated user's notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}

	var skip int64
	if skipParam := c.QueryParam("skip"); skipParam != "" {
		parsed, err := strconv.ParseInt(skipParam, 10, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid skip")
		}
		skip = parsed
	}

	notifications, err := h.notificationRepository.ListByRecipient(c.Request().Context(), user.ID, skip, 50)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}

	count, err := h.notificationRepository.CountUnread(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

// MarkAsRead flags a single notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}
	notificationID, httpErr := parseObjectID(c, "id")
	if httpErr != nil {
		return httpErr
	}

	notification, err := h.notificationRepository.GetByID(c.Request().Context(), notificationID)
	if err != nil {
		return httpError(err)
	}
	// Only the recipient may mark their notification as read.
	if notification.Recipient != user.ID {
		return httpError(errs.E(errs.KindForbidden, "notifications.MarkAsRead", "not your notification"))
	}

	if err := h.notificationRepository.MarkRead(c.Request().Context(), notificationID); err != nil {
		return httpError(err)
	}
	// Reading a notification removes it from the unread set only; it
	// stays in the notifications set.
	if err := h.userRepository.MarkNotificationRead(c.Request().Context(), user.ID, notificationID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead flags every unread notification of the user as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	user, httpErr := currentUser(c, h.userRepository)
	if httpErr != nil {
		return httpErr
	}

	if err := h.notificationRepository.MarkAllRead(c.Request().Context(), user.ID); err != nil {
		return httpError(err)
	}
	if err := h.userRepository.ClearUnreadNotifications(c.Request().Context(), user.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
