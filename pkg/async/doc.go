// Package async provides generic helpers for running work concurrently.
//
// Async starts a function in its own goroutine and returns a Future, which
// is how the health endpoint probes dependencies concurrently. Map processes
// a slice with bounded concurrency and reports a per-item Result, which is
// how role-wide fan-out creates one notification per recipient.
//
//	results := async.Map(ctx, recipients, 8, func(ctx context.Context, id string) (*Notification, error) {
//		return gw.Create(ctx, paramsFor(id))
//	})
package async
