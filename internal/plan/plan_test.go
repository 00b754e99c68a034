package plan

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/portwait/internal/model"
	"github.com/mmr-tortoise/portwait/pkg/portwait"
)

// writePlan drops plan content into a temp file with the given name and
// returns its path.
func writePlan(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writePlan(t, "waitplan.yaml", `
targets:
  - name: api
    port: 8080
    state: used
    retry_interval: 250ms
    timeout: 10s
  - port: 5432
    host: db.internal
    state: free
  - name: legacy
    port: 9000
    retry_interval: 500
`)

	p, err := Load(path)
	require.NoError(t, err)
	require.Len(t, p.Targets, 3)

	api := p.Targets[0]
	assert.Equal(t, "api", api.Name)
	assert.Equal(t, 8080, api.Port)
	assert.Equal(t, model.StateUsed, api.State)
	assert.Equal(t, Duration(250*time.Millisecond), api.RetryInterval)
	assert.Equal(t, Duration(10*time.Second), api.Timeout)

	db := p.Targets[1]
	assert.Equal(t, "db.internal", db.Host)
	assert.Equal(t, model.StateFree, db.State)
	assert.Zero(t, db.Timeout, "unset timeout stays zero so the library default applies")

	// Bare integers are milliseconds, state defaults to "used".
	legacy := p.Targets[2]
	assert.Equal(t, Duration(500*time.Millisecond), legacy.RetryInterval)
	assert.Equal(t, model.StateUsed, legacy.State)
}

func TestLoad_JSONC(t *testing.T) {
	path := writePlan(t, "waitplan.jsonc", `{
  // Wait for the API before running the smoke tests.
  "targets": [
    {
      "name": "api",
      "port": 8080,
      "state": "used",
      "retryInterval": "100ms",
      "timeout": 2000, // milliseconds
    },
  ],
}`)

	p, err := Load(path)
	require.NoError(t, err)
	require.Len(t, p.Targets, 1)

	api := p.Targets[0]
	assert.Equal(t, "api", api.Name)
	assert.Equal(t, Duration(100*time.Millisecond), api.RetryInterval)
	assert.Equal(t, Duration(2*time.Second), api.Timeout)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writePlan(t, "waitplan.toml", "targets = []")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported plan format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr string
	}{
		{
			name:    "no targets",
			plan:    Plan{},
			wantErr: "no targets",
		},
		{
			name:    "port out of range",
			plan:    Plan{Targets: []Target{{Name: "bad", Port: 70000}}},
			wantErr: "target bad: invalid port: 70000",
		},
		{
			name:    "invalid state",
			plan:    Plan{Targets: []Target{{Port: 80, State: "bound"}}},
			wantErr: "invalid state",
		},
		{
			name:    "negative timeout",
			plan:    Plan{Targets: []Target{{Port: 80, Timeout: -1}}},
			wantErr: "timeout must not be negative",
		},
		{
			name: "valid",
			plan: Plan{Targets: []Target{{Port: 80}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				// Defaults were applied in place.
				assert.Equal(t, model.StateUsed, tt.plan.Targets[0].State)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

// TestExecute_Succeeds runs a two-target plan against a real listener: the
// bound port must be "used" and a released port must be "free".
func TestExecute_Succeeds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	usedPort := ln.Addr().(*net.TCPAddr).Port

	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	freePort := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	p := Plan{Targets: []Target{
		{Name: "up", Host: "127.0.0.1", Port: usedPort, State: model.StateUsed},
		{Name: "down", Host: "127.0.0.1", Port: freePort, State: model.StateFree,
			RetryInterval: Duration(20 * time.Millisecond), Timeout: Duration(time.Second)},
	}}
	require.NoError(t, p.Validate())

	var logged []string
	logf := func(format string, args ...interface{}) {
		logged = append(logged, format)
	}

	require.NoError(t, p.Execute(context.Background(), logf))
	assert.Len(t, logged, 4, "two progress lines per target")
}

// TestExecute_StopsOnFirstFailure verifies a timing-out target aborts the
// run with an error naming it, and that ErrTimeout survives the wrapping.
func TestExecute_StopsOnFirstFailure(t *testing.T) {
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	p := Plan{Targets: []Target{
		{Name: "never", Host: "127.0.0.1", Port: port, State: model.StateUsed,
			RetryInterval: Duration(20 * time.Millisecond), Timeout: Duration(200 * time.Millisecond)},
		{Name: "unreached", Host: "127.0.0.1", Port: port, State: model.StateFree},
	}}
	require.NoError(t, p.Validate())

	err = p.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, portwait.ErrTimeout)
	assert.Contains(t, err.Error(), `target never`)
	assert.Contains(t, err.Error(), strconv.Itoa(port))
}
