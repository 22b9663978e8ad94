package broadcast_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/broadcast"
)

func TestRedisRelay_CrossInstance(t *testing.T) {
	url := os.Getenv("NOTIFYKIT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("NOTIFYKIT_TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	channel := "notifykit:test:" + t.Name()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hubA := broadcast.NewHub[string]()
	hubB := broadcast.NewHub[string]()
	relayA := broadcast.NewRedisRelay(hubA, client, channel, nil)
	relayB := broadcast.NewRedisRelay(hubB, client, channel, nil)
	defer relayA.Close()
	defer relayB.Close()

	go func() { _ = relayA.Run(ctx) }()
	go func() { _ = relayB.Run(ctx) }()

	subA, err := relayA.Subscribe(ctx, "student:42")
	require.NoError(t, err)
	subB, err := relayB.Subscribe(ctx, "student:42")
	require.NoError(t, err)

	// Wait until both relays are subscribed on the Redis side.
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, channel).Result()
		return err == nil && n[channel] >= 2
	}, 2*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		return relayA.Healthcheck(ctx) == nil && relayB.Healthcheck(ctx) == nil
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, relayA.Broadcast(ctx, broadcast.Message[string]{Room: "student:42", Data: "hi"}))

	assert.Equal(t, "hi", receive(t, subA).Data)
	assert.Equal(t, "hi", receive(t, subB).Data)
	assertNoMessage(t, subA)
}

func TestRedisRelay_EmptyRoom(t *testing.T) {
	t.Parallel()

	relay := broadcast.NewRedisRelay(broadcast.NewHub[string](), nil, "unused", nil)
	err := relay.Broadcast(context.Background(), broadcast.Message[string]{})
	assert.ErrorIs(t, err, broadcast.ErrEmptyRoom)
}

func TestRedisRelay_SuperviseRestartsFailedRuns(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	relay := broadcast.NewRedisRelay(broadcast.NewHub[string](), client, "notifykit:test:down", nil)
	assert.ErrorIs(t, relay.Healthcheck(context.Background()), broadcast.ErrRelayStopped)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		relay.Supervise(ctx, time.Millisecond, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("supervisor gave up while redis was unreachable")
	case <-time.After(150 * time.Millisecond):
	}
	assert.ErrorIs(t, relay.Healthcheck(ctx), broadcast.ErrRelayStopped)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancel")
	}
}
