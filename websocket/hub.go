package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/models"
)

// Event types sent over the socket.
const (
	EventConnected           = "connected"
	EventNotificationCreated = "notification.created"
)

const sendBuffer = 16

// Event represents a message sent over WebSocket
type Event struct {
	Type     string          `json:"type"`
	Audience models.Audience `json:"audience,omitempty"`
	Data     interface{}     `json:"data,omitempty"`
}

// Client is one open socket of an authenticated user.
type Client struct {
	ID       string
	UserID   string
	Audience models.Audience
	conn     *websocket.Conn
	send     chan []byte
}

func (c *Client) key() string {
	return subscriberKey(c.Audience, c.UserID)
}

func subscriberKey(audience models.Audience, userID string) string {
	return string(audience) + ":" + userID
}

// Hub maintains the set of active clients, several per user.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        logrus.FieldLogger
}

// NewHub creates a new Hub instance
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.WithField("component", "ws-hub"),
	}
}

// Run starts the hub's event loop and closes every client when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.key()]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.key()] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"userId": client.UserID, "clientId": client.ID}).Debug("client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.key()]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.key())
	}
	close(client.send)
}

// SendToUser queues ev on every open socket of the user and returns how many
// sockets accepted it. A socket whose buffer is full misses the event.
func (h *Hub) SendToUser(audience models.Audience, userID string, ev Event) int {
	body, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Error("failed to encode websocket event")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[subscriberKey(audience, userID)] {
		select {
		case client.send <- body:
			delivered++
		default:
			h.log.WithFields(logrus.Fields{"userId": userID, "clientId": client.ID}).Warn("websocket buffer full, event dropped")
		}
	}
	return delivered
}

// Count returns the number of open sockets of the user.
func (h *Hub) Count(audience models.Audience, userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[subscriberKey(audience, userID)])
}
