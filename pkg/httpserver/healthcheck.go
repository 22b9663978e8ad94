package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Check is a named dependency probe such as pg.Healthcheck(pool).
type Check struct {
	Name  string
	Probe func(context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler runs every check concurrently with a per-request timeout and answers
// 200 {"status":"ok"} or 503 {"status":"unavailable"} with per-check results.
// With no checks it acts as a liveness probe.
func HealthHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		pending := make([]*async.Future[struct{}], len(checks))
		for i, c := range checks {
			pending[i] = async.Async(ctx, c, func(ctx context.Context, c Check) (struct{}, error) {
				return struct{}{}, c.Probe(ctx)
			})
		}
		for i, c := range checks {
			if _, err := pending[i].AwaitContext(ctx); err != nil {
				log.WarnContext(ctx, "health check failed", logger.Component(c.Name), logger.Error(err))
				resp.Checks[c.Name] = "unavailable"
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
