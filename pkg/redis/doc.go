// Package redis connects a go-redis client with retries and exposes a
// health probe. The client backs the cross-instance room relay in
// pkg/broadcast.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
