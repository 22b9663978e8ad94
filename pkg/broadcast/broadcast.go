package broadcast

import (
	"context"
	"sync"
)

// Message is a payload addressed to a single room.
type Message[T any] struct {
	Room string `json:"room"`
	Data T      `json:"data"`
}

// Subscriber receives messages published to any of its rooms.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the
	// subscriber is closed, evicted as a slow consumer, or the hub shuts down.
	Receive() <-chan Message[T]
	Rooms() []string
	// Close detaches the subscriber from every room. It is idempotent.
	Close() error
}

// Broadcaster fans messages out to room members.
// Implementations drop messages for slow consumers instead of blocking.
type Broadcaster[T any] interface {
	// Subscribe joins the given rooms. The subscription ends when ctx is
	// cancelled or Close is called on the returned Subscriber.
	Subscribe(ctx context.Context, rooms ...string) (Subscriber[T], error)
	// Broadcast delivers msg to every current member of msg.Room.
	// A room with no members is not an error.
	Broadcast(ctx context.Context, msg Message[T]) error
	Close() error
}

type subscriber[T any] struct {
	ch     chan Message[T]
	done   chan struct{}
	rooms  []string
	detach func(*subscriber[T])

	mu     sync.RWMutex
	closed bool
}

func newSubscriber[T any](bufferSize int, rooms []string, detach func(*subscriber[T])) *subscriber[T] {
	return &subscriber[T]{
		ch:     make(chan Message[T], bufferSize),
		done:   make(chan struct{}),
		rooms:  rooms,
		detach: detach,
	}
}

func (s *subscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Rooms() []string {
	out := make([]string, len(s.rooms))
	copy(out, s.rooms)
	return out
}

func (s *subscriber[T]) Close() error {
	s.detach(s)
	return nil
}

// shut closes the delivery channel once. Callers must have removed s from
// every room beforehand.
func (s *subscriber[T]) shut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
}

// send never blocks; false means the message was not delivered.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
