package realtime

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/cinefeed/backend/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// newTestClient creates a client without a connection; only its queue is used
func newTestClient(hub *Hub, userID uint, buffer int) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		userID:  userID,
		hub:     hub,
		send:    make(chan []byte, buffer),
		lagging: make(chan struct{}),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case frame, ok := <-c.send:
		require.True(t, ok, "send queue closed")
		var msg Message
		require.NoError(t, json.Unmarshal(frame, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return Message{}
	}
}

func TestHub_EmitReachesEveryConnectionOfUser(t *testing.T) {
	hub := NewHub()
	phone := newTestClient(hub, 1, 4)
	laptop := newTestClient(hub, 1, 4)
	other := newTestClient(hub, 2, 4)
	hub.Join(phone)
	hub.Join(laptop)
	hub.Join(other)

	require.NoError(t, hub.EmitToUser(context.Background(), 1, "notification", map[string]string{"message": "hi"}))

	for _, c := range []*Client{phone, laptop} {
		msg := receive(t, c)
		assert.Equal(t, "notification", msg.Type)
		assert.Equal(t, map[string]any{"message": "hi"}, msg.Data)
	}
	assert.Empty(t, other.send)
	assert.Equal(t, 3, hub.ConnectionCount())
	assert.Equal(t, 2, hub.RoomSize(1))
}

func TestHub_EmitToOfflineUserIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.EmitToUser(context.Background(), 99, "notification", "x"))
}

func TestHub_LeaveIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, 1, 1)
	hub.Join(c)

	hub.Leave(c)
	hub.Leave(c)

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Zero(t, hub.RoomSize(1))
	assert.Zero(t, hub.ConnectionCount())
}

func TestHub_SlowClientIsFlaggedNotRemoved(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(hub, 1, 1)
	fast := newTestClient(hub, 1, 8)
	hub.Join(slow)
	hub.Join(fast)

	ctx := context.Background()
	require.NoError(t, hub.EmitToUser(ctx, 1, "notification", 1))
	require.NoError(t, hub.EmitToUser(ctx, 1, "notification", 2))
	require.NoError(t, hub.EmitToUser(ctx, 1, "notification", 3))

	// emitting leaves the registry alone; the lagging client's pumps remove it
	assert.Equal(t, 2, hub.RoomSize(1))
	assert.Len(t, fast.send, 3)
	select {
	case <-slow.lagging:
	default:
		t.Fatal("slow client was not flagged")
	}
	select {
	case <-fast.lagging:
		t.Fatal("fast client was flagged")
	default:
	}

	hub.Leave(slow)
	assert.Equal(t, 1, hub.RoomSize(1))
}

func TestHub_ReplyOnlyToJoinedClient(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, 5, 2)
	hub.Join(c)

	c.reply(Message{Type: MessageTypeJoined, Data: map[string]uint{"user_id": 5}})
	msg := receive(t, c)
	assert.Equal(t, MessageTypeJoined, msg.Type)

	hub.Leave(c)
	assert.NotPanics(t, func() { c.reply(Message{Type: MessageTypePong}) })
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, 1, 1)
	b := newTestClient(hub, 2, 1)
	hub.Join(a)
	hub.Join(b)

	hub.Shutdown()
	assert.Zero(t, hub.ConnectionCount())

	late := newTestClient(hub, 3, 1)
	hub.Join(late)
	_, ok := <-late.send
	assert.False(t, ok)
	assert.Zero(t, hub.RoomSize(3))
}
