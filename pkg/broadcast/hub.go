package broadcast

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

type hubConfig struct {
	bufferSize int
	log        *slog.Logger
}

type HubOption func(*hubConfig)

// WithBufferSize sets the per-subscriber channel capacity. Minimum is 1.
func WithBufferSize(n int) HubOption {
	return func(c *hubConfig) { c.bufferSize = max(n, 1) }
}

func WithHubLogger(l *slog.Logger) HubOption {
	return func(c *hubConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// Hub is an in-process room registry. A subscriber belongs to one or more
// rooms and a message reaches only the members of its room.
// Safe for concurrent use.
type Hub[T any] struct {
	cfg hubConfig

	mu     sync.RWMutex
	rooms  map[string]map[*subscriber[T]]struct{}
	closed bool
	wg     sync.WaitGroup
}

var _ Broadcaster[int] = (*Hub[int])(nil)

func NewHub[T any](opts ...HubOption) *Hub[T] {
	cfg := hubConfig{
		bufferSize: 16,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Hub[T]{
		cfg:   cfg,
		rooms: make(map[string]map[*subscriber[T]]struct{}),
	}
}

func (h *Hub[T]) Subscribe(ctx context.Context, rooms ...string) (Subscriber[T], error) {
	rooms = dedupe(rooms)
	if len(rooms) == 0 {
		return nil, ErrNoRooms
	}
	if slices.Contains(rooms, "") {
		return nil, ErrEmptyRoom
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	sub := newSubscriber(h.cfg.bufferSize, rooms, h.remove)
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*subscriber[T]]struct{})
			h.rooms[room] = members
		}
		members[sub] = struct{}{}
	}

	if ctx.Done() != nil {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			select {
			case <-ctx.Done():
				h.remove(sub)
			case <-sub.done:
			}
		}()
	}

	return sub, nil
}

// Broadcast delivers msg to the members of msg.Room. Members whose buffer
// is full are evicted and their channel closed so the consumer can tell it
// fell behind.
func (h *Hub[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if msg.Room == "" {
		return ErrEmptyRoom
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}

	for sub := range h.rooms[msg.Room] {
		if sub.send(msg) {
			continue
		}
		h.cfg.log.WarnContext(ctx, "evicting slow subscriber", logger.Room(msg.Room))
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.remove(sub)
		}()
	}
	return nil
}

// RoomSize returns the number of current members of room.
func (h *Hub[T]) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Rooms lists rooms with at least one member, sorted.
func (h *Hub[T]) Rooms() []string {
	h.mu.RLock()
	out := make([]string, 0, len(h.rooms))
	for room := range h.rooms {
		out = append(out, room)
	}
	h.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Close detaches and closes every subscriber. Later Subscribe and
// Broadcast calls return ErrHubClosed. Close is idempotent.
func (h *Hub[T]) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true

	subs := make(map[*subscriber[T]]struct{})
	for _, members := range h.rooms {
		for sub := range members {
			subs[sub] = struct{}{}
		}
	}
	clear(h.rooms)
	h.mu.Unlock()

	for sub := range subs {
		sub.shut()
	}
	h.wg.Wait()
	return nil
}

func (h *Hub[T]) remove(sub *subscriber[T]) {
	h.mu.Lock()
	for _, room := range sub.rooms {
		members := h.rooms[room]
		delete(members, sub)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	sub.shut()
}

func dedupe(rooms []string) []string {
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
