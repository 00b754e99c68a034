package model

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DesiredState is the port state a wait operation polls toward.
type DesiredState string

const (
	// StateFree means no listener holds the port.
	StateFree DesiredState = "free"

	// StateUsed means something is accepting connections on the port.
	StateUsed DesiredState = "used"
)

// String returns the string representation of DesiredState.
// This method satisfies the fmt.Stringer interface.
func (s DesiredState) String() string {
	return string(s)
}

// IsValid checks whether the DesiredState value is one of the
// predefined valid states.
func (s DesiredState) IsValid() bool {
	switch s {
	case StateFree, StateUsed:
		return true
	default:
		return false
	}
}

// ParseDesiredState converts a string to a DesiredState.
// Returns an error if the string does not match any valid state.
func ParseDesiredState(s string) (DesiredState, error) {
	state := DesiredState(strings.ToLower(strings.TrimSpace(s)))
	if !state.IsValid() {
		return "", fmt.Errorf("invalid state: %q (valid: free, used)", s)
	}
	return state, nil
}

// maxPort is the highest valid TCP port number (2^16 - 1).
const maxPort = 65535

// Target identifies one port to probe. An empty Host means the loopback
// address; the portwait library applies that default itself, so Host is
// passed through as-is.
type Target struct {
	// Host is the hostname or address to probe. Optional.
	Host string `json:"host,omitempty"`

	// Port is the TCP port number (0-65535).
	Port int `json:"port"`
}

// Validate checks that the target's port is within the valid range.
// The offending value is carried in the error message.
func (t Target) Validate() error {
	if t.Port < 0 || t.Port > maxPort {
		return fmt.Errorf("invalid port: %d (valid: 0-%d)", t.Port, maxPort)
	}
	return nil
}

// String returns the target as "host:port", with the loopback default
// applied for display purposes.
func (t Target) String() string {
	host := t.Host
	if strings.TrimSpace(host) == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(t.Port))
}

// ExitCode defines the CLI exit codes. These codes allow scripts and CI
// systems to programmatically distinguish "the state never happened"
// (timeout) from bad input and from probe failures.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInvalidTarget indicates the port or host input was rejected
	// before any probe was attempted.
	ExitInvalidTarget ExitCode = 2

	// ExitTimeout indicates the deadline elapsed before the port reached
	// the desired state.
	ExitTimeout ExitCode = 3

	// ExitProbeFailed indicates a probe attempt failed with something other
	// than the refused/in-use outcomes it classifies (unreachable host,
	// DNS failure, permission error).
	ExitProbeFailed ExitCode = 4

	// ExitPlanNotFound indicates the wait-plan file does not exist.
	ExitPlanNotFound ExitCode = 5

	// ExitPlanInvalid indicates the wait-plan file could not be parsed or
	// failed validation.
	ExitPlanInvalid ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
