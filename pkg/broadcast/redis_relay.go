package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// RedisRelay makes room broadcasts visible to every process sharing a Redis
// channel. Broadcast publishes to Redis only; delivery to local members
// happens when Run receives the message back, so every instance, including
// the publisher, delivers exactly once.
type RedisRelay[T any] struct {
	hub     *Hub[T]
	client  redis.UniversalClient
	channel string
	log     *slog.Logger

	subscribed    atomic.Bool
	subscriptions atomic.Uint64
}

var _ Broadcaster[int] = (*RedisRelay[int])(nil)

func NewRedisRelay[T any](hub *Hub[T], client redis.UniversalClient, channel string, log *slog.Logger) *RedisRelay[T] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RedisRelay[T]{
		hub:     hub,
		client:  client,
		channel: channel,
		log:     log,
	}
}

func (r *RedisRelay[T]) Subscribe(ctx context.Context, rooms ...string) (Subscriber[T], error) {
	return r.hub.Subscribe(ctx, rooms...)
}

func (r *RedisRelay[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if msg.Room == "" {
		return ErrEmptyRoom
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Join(ErrPublish, err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return errors.Join(ErrPublish, err)
	}
	return nil
}

// Close closes the local hub. The Redis client is owned by the caller.
func (r *RedisRelay[T]) Close() error {
	return r.hub.Close()
}

// Run forwards messages from the Redis channel into the local hub until ctx
// is cancelled. Undecodable payloads are logged and skipped.
func (r *RedisRelay[T]) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Join(ErrRelayStopped, err)
	}

	r.subscribed.Store(true)
	r.subscriptions.Add(1)
	defer r.subscribed.Store(false)

	r.log.InfoContext(ctx, "redis relay subscribed", slog.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return ErrRelayStopped
			}
			var msg Message[T]
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				r.log.WarnContext(ctx, "dropping undecodable relay message", logger.Error(err))
				continue
			}
			if err := r.hub.Broadcast(ctx, msg); err != nil {
				if errors.Is(err, ErrHubClosed) {
					return nil
				}
				r.log.WarnContext(ctx, "relay delivery failed", logger.Room(msg.Room), logger.Error(err))
			}
		}
	}
}

// Supervise runs Run until ctx is cancelled or the hub closes, restarting it
// after failures. The delay doubles from minDelay up to maxDelay and resets
// once a restarted subscription succeeds.
func (r *RedisRelay[T]) Supervise(ctx context.Context, minDelay, maxDelay time.Duration) {
	minDelay = max(minDelay, time.Millisecond)
	maxDelay = max(maxDelay, minDelay)
	delay := minDelay

	for {
		before := r.subscriptions.Load()
		err := r.Run(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		if r.subscriptions.Load() != before {
			delay = minDelay
		}

		r.log.LogAttrs(ctx, slog.LevelError, "redis relay stopped, restarting",
			slog.String("channel", r.channel),
			slog.Duration("retry_in", delay),
			logger.Error(err),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, maxDelay)
	}
}

// Healthcheck returns ErrRelayStopped while no Run call holds a live
// subscription. It has the httpserver.Check probe signature.
func (r *RedisRelay[T]) Healthcheck(context.Context) error {
	if !r.subscribed.Load() {
		return ErrRelayStopped
	}
	return nil
}
