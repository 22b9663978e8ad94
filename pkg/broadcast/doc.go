// Package broadcast provides type-safe, room-scoped message fan-out.
//
// Hub keeps the room registry for a single process. A subscriber joins one
// or more rooms and receives only messages addressed to those rooms:
//
//	hub := broadcast.NewHub[Event](broadcast.WithBufferSize(32))
//	defer hub.Close()
//
//	sub, err := hub.Subscribe(ctx, "student", "student:42")
//	if err != nil {
//		return err
//	}
//	for msg := range sub.Receive() {
//		handle(msg.Room, msg.Data)
//	}
//
// Sends never block. A subscriber whose buffer is full is evicted and its
// channel closed. Subscriptions end when their context is cancelled.
//
// RedisRelay wraps a Hub so broadcasts reach subscribers connected to other
// instances through a shared Redis pub/sub channel.
package broadcast
