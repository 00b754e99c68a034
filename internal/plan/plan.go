// Package plan implements wait-plan files for the "portwait run" command.
//
// A wait plan lists ports to wait on sequentially, which is the common shape
// of a CI or test-harness startup script: bring up a stack, then block until
// each service's port is used (or a previous run's port is free) before
// proceeding.
//
// Plans are written in YAML or in JSONC (JSON with Comments). JSONC support
// uses github.com/tidwall/jsonc to strip comments before parsing with the
// standard encoding/json library.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/portwait/internal/model"
	"github.com/mmr-tortoise/portwait/pkg/portwait"
)

// Duration is a time.Duration that unmarshals from either a duration string
// ("250ms", "10s") or a bare integer, interpreted as milliseconds.
type Duration time.Duration

// UnmarshalYAML decodes a YAML scalar into a Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	// Bare integers are milliseconds.
	var ms int64
	if err := value.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// UnmarshalJSON decodes a JSON number or string into a Duration.
func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(dur)
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// Target is one entry in a wait plan.
type Target struct {
	// Name labels the target in logs and error messages.
	// Defaults to "host:port" when omitted.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Host is the address to probe. Empty means loopback.
	Host string `yaml:"host,omitempty" json:"host,omitempty"`

	// Port is the TCP port to wait on (0-65535).
	Port int `yaml:"port" json:"port"`

	// State is the desired state to wait for: "free" or "used".
	// Defaults to "used" — waiting for services to come up is the
	// common case in startup scripts.
	State model.DesiredState `yaml:"state,omitempty" json:"state,omitempty"`

	// RetryInterval is the polling cadence for this target.
	// Zero means the per-operation library default.
	RetryInterval Duration `yaml:"retry_interval,omitempty" json:"retryInterval,omitempty"`

	// Timeout is the deadline for this target.
	// Zero means the per-operation library default.
	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// label returns the target's display name.
func (t Target) label() string {
	if t.Name != "" {
		return t.Name
	}
	return model.Target{Host: t.Host, Port: t.Port}.String()
}

// Plan is a parsed wait-plan file.
type Plan struct {
	// Targets are waited on sequentially, in file order.
	Targets []Target `yaml:"targets" json:"targets"`
}

// Load reads and parses a wait plan. The format is chosen by file
// extension: .yaml/.yml for YAML, .json/.jsonc for JSONC. The returned
// plan is already validated.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Plan
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		// Strip JSONC comments and trailing commas, then parse as JSON.
		if err := json.Unmarshal(jsonc.ToJSON(data), &p); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan format %q (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return &p, nil
}

// Validate checks the plan before anything is probed, applying the
// per-target defaults (state "used", name "host:port"). Errors name the
// offending target.
func (p *Plan) Validate() error {
	if len(p.Targets) == 0 {
		return fmt.Errorf("plan has no targets")
	}

	for i := range p.Targets {
		t := &p.Targets[i]

		if t.State == "" {
			t.State = model.StateUsed
		}
		if !t.State.IsValid() {
			return fmt.Errorf("target %s: invalid state: %q (valid: free, used)", t.label(), t.State)
		}
		if err := (model.Target{Host: t.Host, Port: t.Port}).Validate(); err != nil {
			return fmt.Errorf("target %s: %w", t.label(), err)
		}
		if t.RetryInterval < 0 {
			return fmt.Errorf("target %s: retry interval must not be negative", t.label())
		}
		if t.Timeout < 0 {
			return fmt.Errorf("target %s: timeout must not be negative", t.label())
		}
	}
	return nil
}

// Logf receives progress messages during Execute. May be nil.
type Logf func(format string, args ...interface{})

// Execute waits on every target in order. The first target that fails stops
// the run and its error is returned, wrapped with the target's label;
// errors.Is(err, portwait.ErrTimeout) still works through the wrapping.
func (p *Plan) Execute(ctx context.Context, logf Logf) error {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	for _, t := range p.Targets {
		opts := portwait.Options{
			RetryInterval: time.Duration(t.RetryInterval),
			Timeout:       time.Duration(t.Timeout),
		}

		logf("waiting for %s to become %s", t.label(), t.State)
		start := time.Now()

		var err error
		switch {
		case t.State == model.StateFree && strings.TrimSpace(t.Host) == "":
			// No host: the bind probe answers whether this machine could
			// claim the port.
			err = portwait.WaitUntilFree(ctx, t.Port, opts)
		case t.State == model.StateFree:
			err = portwait.WaitUntilFreeOnHost(ctx, t.Port, t.Host, opts)
		default:
			err = portwait.WaitUntilUsedOnHost(ctx, t.Port, t.Host, opts)
		}
		if err != nil {
			return fmt.Errorf("target %s: %w", t.label(), err)
		}

		logf("%s is %s (after %s)", t.label(), t.State, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
