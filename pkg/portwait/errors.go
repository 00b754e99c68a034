package portwait

import (
	"errors"
	"fmt"
)

// ErrTimeout is the sentinel wrapped into the error returned by the Wait
// functions when the deadline elapses before the port reaches the desired
// state. Use errors.Is(err, ErrTimeout) to distinguish "the state never
// happened" from a failed probe.
var ErrTimeout = errors.New("timeout waiting for port state")

// InvalidPortError reports a port number outside the valid range [0, 65535].
// It is returned synchronously, before any socket is opened, and carries the
// offending value.
type InvalidPortError struct {
	// Port is the rejected value.
	Port int
}

// Error satisfies the error interface.
func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("invalid port: %d", e.Port)
}
