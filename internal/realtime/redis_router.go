package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/metrics"
)

// DefaultChannel is the pub/sub channel shared by all instances
const DefaultChannel = "cinefeed:realtime"

type envelope struct {
	UserID  uint            `json:"user_id"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// breakerTrips is the number of consecutive publish failures that opens the breaker
const breakerTrips = 5

// RedisRouter publishes events to Redis and relays every received event to
// the local Hub, so a user is reached whichever instance holds the socket.
// When publishing fails, or this instance is not subscribed, events are also
// delivered to the local Hub directly.
type RedisRouter struct {
	client   redis.UniversalClient
	local    *Hub
	channel  string
	ready    chan struct{}
	breaker  *gobreaker.CircuitBreaker[struct{}]
	relaying atomic.Bool // Run is subscribed and relaying to local
}

// NewRedisRouter creates a router on DefaultChannel
func NewRedisRouter(client redis.UniversalClient, local *Hub) *RedisRouter {
	return newRedisRouter(client, local, 30*time.Second)
}

func newRedisRouter(client redis.UniversalClient, local *Hub, openFor time.Duration) *RedisRouter {
	metrics.RealtimeBreakerOpen.Set(0)
	return &RedisRouter{
		client:   client,
		local:    local,
		channel:  DefaultChannel,
		ready:    make(chan struct{}),
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "realtime-redis",
			MaxRequests: 1,
			Timeout:     openFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerTrips
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
					Msg("realtime publish breaker state change")
				if to == gobreaker.StateOpen {
					metrics.RealtimeBreakerOpen.Set(1)
				} else {
					metrics.RealtimeBreakerOpen.Set(0)
				}
			},
		}),
	}
}

// EmitToUser publishes the event for every instance to deliver locally
func (r *RedisRouter) EmitToUser(ctx context.Context, userID uint, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event, err)
	}
	msg, err := json.Marshal(envelope{UserID: userID, Event: event, Payload: data})
	if err != nil {
		return err
	}
	_, err = r.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, r.client.Publish(ctx, r.channel, msg).Err()
	})
	if err == nil && r.relaying.Load() {
		return nil
	}
	if err != nil && !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Warn().Err(err).Str("event", event).Uint("user_id", userID).
			Msg("realtime publish failed, delivering to local connections only")
	}
	return r.local.EmitToUser(ctx, userID, event, json.RawMessage(data))
}

// Ready is closed once the subscription is active
func (r *RedisRouter) Ready() <-chan struct{} {
	return r.ready
}

// Run relays published events to the local hub until ctx is canceled
func (r *RedisRouter) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.channel, err)
	}
	r.relaying.Store(true)
	defer r.relaying.Store(false)
	close(r.ready)
	logging.Info().Str("channel", r.channel).Msg("realtime redis subscriber started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("channel", r.channel).Msg("realtime redis subscriber stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("realtime redis subscription closed")
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logging.Warn().Err(err).Msg("dropping malformed realtime message")
				continue
			}
			_ = r.local.EmitToUser(ctx, env.UserID, env.Event, env.Payload)
		}
	}
}
