// Package config loads the CLI's environment-variable defaults.
//
// Environment variables sit between flags and built-in defaults in
// precedence: an explicit flag always wins, an env var fills in when the
// flag is absent, and the portwait library's own per-operation defaults
// apply when neither is set. The library itself never reads the
// environment — these values are resolved once in the CLI layer and passed
// into each session explicitly.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Env holds the defaults configurable via environment variables.
type Env struct {
	// Host is the default probe host. Empty means loopback.
	Host string `envconfig:"PORTWAIT_HOST"`

	// RetryInterval is the default polling cadence for wait commands,
	// e.g. "250ms". Zero means the per-operation library default.
	RetryInterval time.Duration `envconfig:"PORTWAIT_RETRY_INTERVAL"`

	// Timeout is the default deadline for wait commands, e.g. "10s".
	// Zero means the per-operation library default.
	Timeout time.Duration `envconfig:"PORTWAIT_TIMEOUT"`
}

// Load reads Env from the process environment.
func Load() (*Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}
	if e.RetryInterval < 0 {
		return nil, fmt.Errorf("PORTWAIT_RETRY_INTERVAL must not be negative, got %s", e.RetryInterval)
	}
	if e.Timeout < 0 {
		return nil, fmt.Errorf("PORTWAIT_TIMEOUT must not be negative, got %s", e.Timeout)
	}
	return &e, nil
}
