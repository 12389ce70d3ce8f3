package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/anonto42/cinefeed/backend/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var clientIDCounter atomic.Uint64

// Client is a middleman between one websocket connection and the hub
type Client struct {
	id     uint64
	userID uint
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	lagging     chan struct{} // closed once the send queue overflowed
	laggingOnce sync.Once
}

// NewClient creates a Client for the connection of userID
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		userID:  userID,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		lagging: make(chan struct{}),
	}
}

// markLagging flags the client for disconnection. It reports whether this
// call was the first.
func (c *Client) markLagging() bool {
	first := false
	c.laggingOnce.Do(func() {
		close(c.lagging)
		first = true
	})
	return first
}

// reply queues a control frame without blocking the read loop
func (c *Client) reply(msg Message) {
	frame, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.hub.reply(c, frame)
}

// readPump handles client frames until the connection closes
func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Uint("user_id", c.userID).Msg("unexpected websocket close error")
			}
			return
		}

		switch msg.Type {
		case MessageTypePing:
			c.reply(Message{Type: MessageTypePong})
		case MessageTypeJoin:
			// Connections are bound to their own room on upgrade; join only acknowledges it.
			c.reply(Message{Type: MessageTypeJoined, Data: map[string]uint{"user_id": c.userID}})
		}
	}
}

// writePump writes queued frames and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logging.Debug().Err(err).Uint("user_id", c.userID).Msg("websocket write failed")
				return
			}

		case <-c.lagging:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "send queue overflow"))
			return

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
