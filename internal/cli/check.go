// Package cli — check.go implements the "portwait check" command.
//
// check runs the connect probe exactly once and reports the port's current
// state. It never retries: a refused connection is "free", a successful one
// is "in use", anything else is a probe failure.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portwait/internal/model"
	"github.com/mmr-tortoise/portwait/pkg/portwait"
)

// defaultCheckTimeout bounds the single connection attempt so a blackholed
// host cannot hang the command indefinitely.
const defaultCheckTimeout = 5 * time.Second

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	var (
		host         string
		timeout      time.Duration
		failWhenFree bool
		failWhenUsed bool
	)

	cmd := &cobra.Command{
		Use:   "check <port>",
		Short: "Probe a port once and report whether it is in use",
		Long: `Run a single connect probe against a port and print its state.

The probe dials the target: a successful connection means something is
accepting connections (in use), an actively refused connection means
nothing is listening (free). Any other failure — unreachable host, DNS
error — is reported as a probe failure, not as either state.

Examples:
  portwait check 8080
  portwait check 5432 --host db.internal
  portwait check 8080 --fail-when-free && run-smoke-tests`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args[0], host, timeout, failWhenFree, failWhenUsed)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to probe (default: loopback)")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultCheckTimeout, "Deadline for the connection attempt")
	cmd.Flags().BoolVar(&failWhenFree, "fail-when-free", false, "Exit non-zero if the port is free")
	cmd.Flags().BoolVar(&failWhenUsed, "fail-when-used", false, "Exit non-zero if the port is in use")

	return cmd
}

// runCheck is the main logic function for the check command.
func runCheck(ctx context.Context, portArg, host string, timeout time.Duration, failWhenFree, failWhenUsed bool) error {
	port, err := parsePort(portArg)
	if err != nil {
		return err
	}

	env, err := loadEnv()
	if err != nil {
		return err
	}
	if host == "" {
		host = env.Host
	}

	target := model.Target{Host: host, Port: port}
	VerboseLog("probing %s once", target)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	inUse, err := portwait.CheckOnHost(ctx, port, host)
	if err != nil {
		return classifyWaitError(err, target, "")
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"host":  target.Host,
			"port":  port,
			"inUse": inUse,
		}, "", "  ")
		fmt.Println(string(data))
	} else if inUse {
		fmt.Printf("%s is in use\n", target)
	} else {
		fmt.Printf("%s is free\n", target)
	}

	if failWhenFree && !inUse {
		return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("%s is free", target))
	}
	if failWhenUsed && inUse {
		return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("%s is in use", target))
	}
	return nil
}
