// Package cli — free.go implements the "portwait free" command.
//
// free blocks until the port is observed free, or the deadline elapses.
// Without --host the command uses the bind probe ("could this machine claim
// the port?"); with --host it switches to the connect probe ("has the host
// stopped accepting connections?"). The two observations differ, so which
// one runs is part of the command's contract.
package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portwait/internal/model"
	"github.com/mmr-tortoise/portwait/pkg/portwait"
)

// NewFreeCommand creates the "free" cobra command.
func NewFreeCommand() *cobra.Command {
	var flags waitFlags

	cmd := &cobra.Command{
		Use:   "free <port>",
		Short: "Wait until a port becomes free",
		Long: `Block until the port is observed free, or the deadline elapses.

Without --host, the port is probed by attempting to bind it locally, so
the command answers whether this machine could claim the port. With
--host, the port is probed by connection attempts instead, which also
works against remote hosts.

Exit codes: 0 when the port became free, 3 on timeout, 2 on invalid
input, 4 when a probe failed.

Examples:
  portwait free 8080
  portwait free 8080 --timeout 30s --retry-interval 500ms
  portwait free 5432 --host db.internal`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runFree(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runFree is the main logic function for the free command.
func runFree(ctx context.Context, portArg string, flags waitFlags) error {
	port, err := parsePort(portArg)
	if err != nil {
		return err
	}

	env, err := loadEnv()
	if err != nil {
		return err
	}
	flags = flags.resolve(env)

	target := model.Target{Host: flags.host, Port: port}
	VerboseLog("waiting for %s to become free", target)

	if strings.TrimSpace(flags.host) == "" {
		err = portwait.WaitUntilFree(ctx, port, flags.options())
	} else {
		err = portwait.WaitUntilFreeOnHost(ctx, port, flags.host, flags.options())
	}
	if err != nil {
		return classifyWaitError(err, target, model.StateFree)
	}

	printSettled(target, model.StateFree)
	return nil
}
