// Package realtime delivers committed-notification signals to connected
// clients over WebSocket. Delivery is best-effort: an offline recipient
// or a saturated connection drops the signal, and a dropped signal never
// affects the transaction that produced it.
package realtime

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Signal is the minimal payload pushed to a recipient about a new
// notification; the client fetches the full document through the API.
type Signal struct {
	NotificationID string `json:"notification_id"`
	Type           string `json:"type"`
	SenderID       string `json:"sender_id"`
}

// Subscription is one client connection's feed of signals.
type Subscription struct {
	ID     string
	UserID string
	C      chan Signal
}

// Hub tracks which users are connected and fans signals out to their
// subscriptions.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]*Subscription // userID -> subscription id
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[string]*Subscription)}
}

const sendBuffer = 16

// Subscribe registers a new subscription for userID.
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		C:      make(chan Signal, sendBuffer),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[string]*Subscription)
	}
	h.subs[userID][sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.subs[sub.UserID]; ok {
		if _, ok := conns[sub.ID]; ok {
			delete(conns, sub.ID)
			close(sub.C)
			if len(conns) == 0 {
				delete(h.subs, sub.UserID)
			}
		}
	}
}

// Publish sends the signal to every subscription of recipientID.
// Unknown recipients and full buffers drop the signal.
func (h *Hub) Publish(recipientID string, s Signal) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[recipientID] {
		select {
		case sub.C <- s:
		default:
			// Slow consumer; the signal is droppable.
		}
	}
}

// ConnectedUsers returns the number of users with at least one
// subscription.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request to a WebSocket connection and streams the
// user's signals until either side closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := h.Subscribe(userID)

	// Reader goroutine only watches for the client closing.
	go func() {
		defer h.Unsubscribe(sub)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		for s := range sub.C {
			if err := conn.WriteJSON(s); err != nil {
				log.Printf("realtime: dropping connection for user %s: %v", userID, err)
				h.Unsubscribe(sub)
				return
			}
		}
	}()

	return nil
}
