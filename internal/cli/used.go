// Package cli — used.go implements the "portwait used" command.
//
// used blocks until something accepts connections on the port, or the
// deadline elapses. It always uses the connect probe; --host points it at a
// remote machine.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portwait/internal/model"
	"github.com/mmr-tortoise/portwait/pkg/portwait"
)

// NewUsedCommand creates the "used" cobra command.
func NewUsedCommand() *cobra.Command {
	var flags waitFlags

	cmd := &cobra.Command{
		Use:   "used <port>",
		Short: "Wait until a port becomes used",
		Long: `Block until something accepts TCP connections on the port, or the
deadline elapses. This is the startup-synchronization primitive: launch a
service, then "portwait used" its port before the first request.

Exit codes: 0 when the port became used, 3 on timeout, 2 on invalid
input, 4 when a probe failed.

Examples:
  portwait used 8080 --timeout 30s
  portwait used 5432 --host db.internal --retry-interval 1s`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsed(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runUsed is the main logic function for the used command.
func runUsed(ctx context.Context, portArg string, flags waitFlags) error {
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
	VerboseLog("waiting for %s to become used", target)

	if err := portwait.WaitUntilUsedOnHost(ctx, port, flags.host, flags.options()); err != nil {
		return classifyWaitError(err, target, model.StateUsed)
	}

	printSettled(target, model.StateUsed)
	return nil
}

// printSettled reports a successful wait in text or JSON form.
func printSettled(target model.Target, state model.DesiredState) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"host":  target.Host,
			"port":  target.Port,
			"state": state.String(),
		}, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Printf("%s is %s\n", target, state)
}
