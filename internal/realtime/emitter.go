package realtime

import (
	"github.com/campuslink/backend/internal/models"
)

// NotificationEmitter adapts the hub to the engine's post-commit hook.
type NotificationEmitter struct {
	hub *Hub
}

// NewNotificationEmitter creates a NotificationEmitter.
func NewNotificationEmitter(hub *Hub) *NotificationEmitter {
	return &NotificationEmitter{hub: hub}
}

// NotificationCreated pushes the minimal delivery payload to the
// recipient. Called only after the creating transaction committed.
func (e *NotificationEmitter) NotificationCreated(n *models.Notification) {
	e.hub.Publish(n.Recipient.Hex(), Signal{
		NotificationID: n.ID.Hex(),
		Type:           n.Type,
		SenderID:       n.Sender.Hex(),
	})
}
