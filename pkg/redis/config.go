package redis

import "time"

// Config describes the optional Redis connection used for cross-instance
// fan-out. An empty ConnectionURL disables Redis entirely.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`
	Channel        string        `env:"REDIS_CHANNEL" envDefault:"notifykit:rooms"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"`

	// Backoff bounds for restarting the relay subscription after it drops.
	RelayMinBackoff time.Duration `env:"REDIS_RELAY_MIN_BACKOFF" envDefault:"500ms"`
	RelayMaxBackoff time.Duration `env:"REDIS_RELAY_MAX_BACKOFF" envDefault:"30s"`
}

// Enabled reports whether a connection URL was configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
