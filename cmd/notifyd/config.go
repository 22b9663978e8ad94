package main

import (
	"time"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/pg"
	"github.com/dmitrymomot/notifykit/pkg/redis"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Service  string `env:"SERVICE_NAME" envDefault:"notifyd"`
	LogLevel string `env:"LOG_LEVEL"`

	// Recipients feeds the fan-out directory, e.g. "admin=7:ops@example.com,9;mentor=3".
	// Fan-out is disabled when empty.
	Recipients string `env:"NOTIFY_RECIPIENTS"`

	FanOutConcurrency  int     `env:"FANOUT_CONCURRENCY" envDefault:"8"`
	EmailLinkBase      string  `env:"EMAIL_LINK_BASE"`
	EmailRatePerSecond float64 `env:"EMAIL_RATE_PER_SECOND" envDefault:"10"`
	EmailRateBurst     int     `env:"EMAIL_RATE_BURST" envDefault:"10"`

	HubBufferSize  int           `env:"HUB_BUFFER_SIZE" envDefault:"16"`
	AllowedOrigins []string      `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
	HealthTimeout  time.Duration `env:"HEALTH_TIMEOUT" envDefault:"3s"`
}

type config struct {
	App   appConfig
	HTTP  httpserver.Config
	PG    pg.Config
	Redis redis.Config
	Email email.Config
}
