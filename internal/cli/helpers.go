// Package cli — helpers.go holds plumbing shared by the subcommands:
// argument parsing, flag/env/default resolution and the translation of
// library errors into CLIError exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portwait/internal/config"
	"github.com/mmr-tortoise/portwait/internal/model"
	"github.com/mmr-tortoise/portwait/pkg/portwait"
)

// parsePort converts the positional port argument. A non-integer argument
// is a validation failure carrying the raw value, same as an out-of-range
// number — neither reaches the probe layer.
func parsePort(arg string) (int, error) {
	port, err := strconv.Atoi(arg)
	if err != nil {
		return 0, model.NewCLIError(model.ExitInvalidTarget, fmt.Sprintf("invalid port: %q", arg))
	}
	return port, nil
}

// waitFlags are the knobs common to the free and used subcommands.
type waitFlags struct {
	host          string
	retryInterval time.Duration
	timeout       time.Duration
}

// register binds the common wait flags onto cmd.
func (f *waitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.host, "host", "", "Host to probe (default: loopback)")
	cmd.Flags().DurationVar(&f.retryInterval, "retry-interval", 0, "Pause between probes (default: per-operation)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Deadline for the whole wait (default: per-operation)")
}

// resolve merges flags with environment defaults. A set flag wins over the
// environment, which wins over the library's built-in defaults (left to the
// library by passing zero values through).
func (f waitFlags) resolve(env *config.Env) waitFlags {
	if f.host == "" {
		f.host = env.Host
	}
	if f.retryInterval == 0 {
		f.retryInterval = env.RetryInterval
	}
	if f.timeout == 0 {
		f.timeout = env.Timeout
	}
	return f
}

// options converts the resolved flags into library Options.
func (f waitFlags) options() portwait.Options {
	return portwait.Options{RetryInterval: f.retryInterval, Timeout: f.timeout}
}

// loadEnv wraps config.Load with the CLI error type.
func loadEnv() (*config.Env, error) {
	env, err := config.Load()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "environment configuration", err)
	}
	return env, nil
}

// classifyWaitError maps a library error onto the CLI exit-code taxonomy:
// timeout, invalid input, cancellation and probe failure each get their own
// code so scripts can tell "never happened" from "failed".
func classifyWaitError(err error, target model.Target, state model.DesiredState) error {
	var invalid *portwait.InvalidPortError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &invalid):
		return model.WrapCLIError(model.ExitInvalidTarget, "invalid target", err)
	case errors.Is(err, portwait.ErrTimeout):
		return model.WrapCLIError(model.ExitTimeout,
			fmt.Sprintf("%s did not become %s in time", target, state), err)
	case errors.Is(err, context.Canceled):
		return model.WrapCLIError(model.ExitGeneralError, "interrupted", err)
	default:
		return model.WrapCLIError(model.ExitProbeFailed,
			fmt.Sprintf("probing %s failed", target), err)
	}
}
