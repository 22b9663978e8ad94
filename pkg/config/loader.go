// Package config loads environment-driven configuration structs.
//
// Field tags follow github.com/caarlos0/env:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//		DSN  string `env:"PG_CONN_URL,required"`
//	}
//
// A .env file in the working directory is loaded once, before the first parse.
// Variables already present in the process environment win over .env values.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load parses environment variables into v.
func Load[T any](v *T) error {
	return load(v, env.Options{})
}

// LoadWithPrefix works like Load but only reads variables starting with prefix.
// Useful when the same struct is embedded twice, e.g. a primary and a replica pool.
func LoadWithPrefix[T any](v *T, prefix string) error {
	return load(v, env.Options{Prefix: prefix})
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func load[T any](v *T, opts env.Options) error {
	dotenvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}
	if err := env.ParseWithOptions(v, opts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
