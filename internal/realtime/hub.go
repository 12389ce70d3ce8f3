package realtime

import (
	"context"
	"sync"

	"github.com/goccy/go-json"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/metrics"
)

// Message types for websocket communication
const (
	MessageTypeJoin   = "join"
	MessageTypeJoined = "joined"
	MessageTypePing   = "ping"
	MessageTypePong   = "pong"
)

// Message is the envelope of every frame sent to or received from a client
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub keeps the live connections of each user
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uint]map[*Client]struct{}
	closed bool
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*Client]struct{})}
}

// Join adds c to the room of its user. A hub that has been shut down
// closes the client instead.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.send)
		return
	}
	room, ok := h.rooms[c.userID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.userID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()

	metrics.RealtimeConnections.Inc()
	logging.Debug().Uint("user_id", c.userID).Uint64("client_id", c.id).Msg("websocket client joined")
}

// Leave removes c from its room and closes its send queue. Safe to call twice.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	h.mu.Unlock()

	if removed {
		logging.Debug().Uint("user_id", c.userID).Uint64("client_id", c.id).Msg("websocket client left")
	}
}

func (h *Hub) removeLocked(c *Client) bool {
	room, ok := h.rooms[c.userID]
	if !ok {
		return false
	}
	if _, ok := room[c]; !ok {
		return false
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.userID)
	}
	close(c.send)
	metrics.RealtimeConnections.Dec()
	return true
}

// EmitToUser queues event on every connection of userID. Emitting never
// changes the registry: a client whose queue is full is flagged as lagging and
// its write pump closes the connection, which removes it through Leave.
func (h *Hub) EmitToUser(_ context.Context, userID uint, event string, payload any) error {
	frame, err := json.Marshal(Message{Type: event, Data: payload})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[userID]
	if len(room) == 0 {
		metrics.RealtimePushes.WithLabelValues(metrics.PushOffline).Inc()
		return nil
	}

	for c := range room {
		select {
		case c.send <- frame:
		default:
			if c.markLagging() {
				logging.Warn().Uint("user_id", userID).Uint64("client_id", c.id).Msg("websocket client too slow, disconnecting")
			}
		}
	}
	metrics.RealtimePushes.WithLabelValues(metrics.PushDelivered).Inc()
	return nil
}

// reply queues a frame for a single client if it is still joined
func (h *Hub) reply(c *Client, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.rooms[c.userID][c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// ConnectionCount returns the number of live connections across all rooms
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// RoomSize returns the number of live connections of userID
func (h *Hub) RoomSize(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Shutdown disconnects every client and refuses new ones
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, room := range h.rooms {
		for c := range room {
			h.removeLocked(c)
			n++
		}
	}
	h.closed = true
	logging.Info().Str("component", "websocket-hub").Int("clients_closed", n).Msg("websocket hub stopped")
}
