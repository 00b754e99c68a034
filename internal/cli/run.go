// Package cli — run.go implements the "portwait run" command.
//
// run executes a wait plan: a YAML or JSONC file listing ports to wait on
// sequentially. The first target that fails aborts the run with that
// target's exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portwait/internal/model"
	"github.com/mmr-tortoise/portwait/internal/plan"
	"github.com/mmr-tortoise/portwait/pkg/portwait"
)

// defaultPlanFile is used when no plan path is given.
const defaultPlanFile = "waitplan.yaml"

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [plan-file]",
		Short: "Wait on every target in a plan file",
		Long: `Execute a wait plan: a YAML or JSONC file listing ports to wait on,
in order. Each target names a port, an optional host, the desired state
("free" or "used", default "used") and optional retry-interval/timeout
overrides.

Example plan (waitplan.yaml):

  targets:
    - name: api
      port: 8080
      state: used
      timeout: 30s
    - name: old-api
      port: 8081
      state: free

The first target that times out or fails stops the run; its exit code
(3 for timeout, 4 for probe failure) becomes the command's exit code.

Examples:
  portwait run
  portwait run deploy/waitplan.jsonc --verbose`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultPlanFile
			if len(args) == 1 {
				path = args[0]
			}
			return runPlan(cmd.Context(), path)
		},
	}

	return cmd
}

// runPlan is the main logic function for the run command.
func runPlan(ctx context.Context, path string) error {
	p, err := plan.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.WrapCLIError(model.ExitPlanNotFound,
				fmt.Sprintf("plan file %s not found", path), err)
		}
		return model.WrapCLIError(model.ExitPlanInvalid, "loading plan", err)
	}

	VerboseLog("executing plan %s with %d targets", path, len(p.Targets))

	if err := p.Execute(ctx, VerboseLog); err != nil {
		switch {
		case errors.Is(err, portwait.ErrTimeout):
			return model.WrapCLIError(model.ExitTimeout, "plan failed", err)
		case errors.Is(err, context.Canceled):
			return model.WrapCLIError(model.ExitGeneralError, "interrupted", err)
		default:
			return model.WrapCLIError(model.ExitProbeFailed, "plan failed", err)
		}
	}

	if IsJSONOutput() {
		fmt.Printf("{\"plan\": %q, \"targets\": %d, \"settled\": true}\n", path, len(p.Targets))
	} else {
		fmt.Printf("all %d targets settled\n", len(p.Targets))
	}
	return nil
}
