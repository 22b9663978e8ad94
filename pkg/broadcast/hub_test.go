package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/broadcast"
)

func receive[T any](t *testing.T, sub broadcast.Subscriber[T]) broadcast.Message[T] {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive():
		require.True(t, ok, "subscriber channel closed")
		return msg
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for message")
	}
	return broadcast.Message[T]{}
}

func assertNoMessage[T any](t *testing.T, sub broadcast.Subscriber[T]) {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive():
		if ok {
			assert.Failf(t, "unexpected message", "room=%s", msg.Room)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RoomIsolation(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[string]()
	defer hub.Close()
	ctx := context.Background()

	student, err := hub.Subscribe(ctx, "student")
	require.NoError(t, err)
	mentor, err := hub.Subscribe(ctx, "mentor")
	require.NoError(t, err)

	require.NoError(t, hub.Broadcast(ctx, broadcast.Message[string]{Room: "student", Data: "hello"}))

	msg := receive(t, student)
	assert.Equal(t, "student", msg.Room)
	assert.Equal(t, "hello", msg.Data)
	assertNoMessage(t, mentor)
}

func TestHub_MultipleRooms(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[int]()
	defer hub.Close()
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx, "student", "student:42", "student")
	require.NoError(t, err)
	assert.Equal(t, []string{"student", "student:42"}, sub.Rooms())
	assert.Equal(t, 1, hub.RoomSize("student"))
	assert.Equal(t, []string{"student", "student:42"}, hub.Rooms())

	require.NoError(t, hub.Broadcast(ctx, broadcast.Message[int]{Room: "student:42", Data: 1}))
	require.NoError(t, hub.Broadcast(ctx, broadcast.Message[int]{Room: "student", Data: 2}))
	require.NoError(t, hub.Broadcast(ctx, broadcast.Message[int]{Room: "student:43", Data: 3}))

	assert.Equal(t, 1, receive(t, sub).Data)
	assert.Equal(t, 2, receive(t, sub).Data)
	assertNoMessage(t, sub)
}

func TestHub_EmptyRoomIsNotAnError(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[string]()
	defer hub.Close()

	assert.NoError(t, hub.Broadcast(context.Background(), broadcast.Message[string]{Room: "admin", Data: "x"}))
}

func TestHub_SubscribeValidation(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[string]()
	defer hub.Close()
	ctx := context.Background()

	_, err := hub.Subscribe(ctx)
	assert.ErrorIs(t, err, broadcast.ErrNoRooms)

	_, err = hub.Subscribe(ctx, "student", "")
	assert.ErrorIs(t, err, broadcast.ErrEmptyRoom)

	err = hub.Broadcast(ctx, broadcast.Message[string]{})
	assert.ErrorIs(t, err, broadcast.ErrEmptyRoom)
}

func TestHub_ContextCancellationLeavesRooms(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[string]()
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := hub.Subscribe(ctx, "company", "company:7")
	require.NoError(t, err)
	require.Equal(t, 1, hub.RoomSize("company"))

	cancel()

	require.Eventually(t, func() bool {
		return hub.RoomSize("company") == 0 && hub.RoomSize("company:7") == 0
	}, time.Second, 10*time.Millisecond)

	_, ok := <-sub.Receive()
	assert.False(t, ok)
}

func TestHub_SubscriberClose(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[string]()
	defer hub.Close()

	sub, err := hub.Subscribe(context.Background(), "admin")
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	assert.Equal(t, 0, hub.RoomSize("admin"))
	assert.Empty(t, hub.Rooms())
}

func TestHub_SlowSubscriberEvicted(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[int](broadcast.WithBufferSize(1))
	defer hub.Close()
	ctx := context.Background()

	slow, err := hub.Subscribe(ctx, "student")
	require.NoError(t, err)
	fast, err := hub.Subscribe(ctx, "student")
	require.NoError(t, err)

	require.NoError(t, hub.Broadcast(ctx, broadcast.Message[int]{Room: "student", Data: 1}))
	assert.Equal(t, 1, receive(t, fast).Data)

	// slow never reads, so the second message overflows its buffer.
	require.NoError(t, hub.Broadcast(ctx, broadcast.Message[int]{Room: "student", Data: 2}))
	assert.Equal(t, 2, receive(t, fast).Data)

	require.Eventually(t, func() bool { return hub.RoomSize("student") == 1 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, receive(t, slow).Data)
	_, ok := <-slow.Receive()
	assert.False(t, ok)
}

func TestHub_Close(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[string]()
	ctx := context.Background()

	sub, err := hub.Subscribe(ctx, "mentor")
	require.NoError(t, err)

	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())

	_, ok := <-sub.Receive()
	assert.False(t, ok)

	_, err = hub.Subscribe(ctx, "mentor")
	assert.ErrorIs(t, err, broadcast.ErrHubClosed)
	assert.ErrorIs(t, hub.Broadcast(ctx, broadcast.Message[string]{Room: "mentor"}), broadcast.ErrHubClosed)
}

func TestHub_ConcurrentUse(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[int](broadcast.WithBufferSize(256))
	defer hub.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := hub.Subscribe(ctx, "student")
			if !assert.NoError(t, err) {
				return
			}
			if i%2 == 0 {
				_ = sub.Close()
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = hub.Broadcast(ctx, broadcast.Message[int]{Room: "student", Data: i})
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, hub.RoomSize("student"))
}
