package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/models"
)

func TestHubPublishToSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer hub.Unsubscribe(sub)

	hub.Publish("user-1", Signal{NotificationID: "n1", Type: "LIKE", SenderID: "user-2"})

	select {
	case got := <-sub.C:
		assert.Equal(t, "n1", got.NotificationID)
		assert.Equal(t, "LIKE", got.Type)
	case <-time.After(time.Second):
		t.Fatal("signal not delivered")
	}
}

func TestHubPublishUnknownRecipientIsDropped(t *testing.T) {
	hub := NewHub()
	// No subscriber; must not panic or block.
	hub.Publish("nobody", Signal{NotificationID: "n1"})
	assert.Zero(t, hub.ConnectedUsers())
}

func TestHubFanOutToMultipleSubscriptions(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe("user-1")
	b := hub.Subscribe("user-1")
	other := hub.Subscribe("user-2")
	defer hub.Unsubscribe(other)

	assert.Equal(t, 2, hub.ConnectedUsers())

	hub.Publish("user-1", Signal{NotificationID: "n1"})

	for _, sub := range []*Subscription{a, b} {
		select {
		case got := <-sub.C:
			assert.Equal(t, "n1", got.NotificationID)
		case <-time.After(time.Second):
			t.Fatal("signal not delivered to all subscriptions")
		}
	}
	assert.Empty(t, other.C)
}

func TestHubSlowConsumerDropsSignals(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer hub.Unsubscribe(sub)

	// Overfill the buffer; the surplus is dropped, never blocking.
	for i := 0; i < sendBuffer*2; i++ {
		hub.Publish("user-1", Signal{NotificationID: "n"})
	}
	assert.Len(t, sub.C, sendBuffer)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	hub.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Zero(t, hub.ConnectedUsers())

	// Double unsubscribe is harmless.
	hub.Unsubscribe(sub)
}

func TestEmitterPublishesCommittedNotification(t *testing.T) {
	hub := NewHub()
	recipient := primitive.NewObjectID()
	sub := hub.Subscribe(recipient.Hex())
	defer hub.Unsubscribe(sub)

	emitter := NewNotificationEmitter(hub)
	n := &models.Notification{
		ID:        primitive.NewObjectID(),
		Recipient: recipient,
		Sender:    primitive.NewObjectID(),
		Type:      models.NotificationLike,
	}
	emitter.NotificationCreated(n)

	select {
	case got := <-sub.C:
		require.Equal(t, n.ID.Hex(), got.NotificationID)
		assert.Equal(t, models.NotificationLike, got.Type)
		assert.Equal(t, n.Sender.Hex(), got.SenderID)
	case <-time.After(time.Second):
		t.Fatal("emitter did not publish")
	}
}
