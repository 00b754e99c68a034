// Package model defines the domain types and value objects for the
// portwait CLI.
//
// This package contains pure data structures with no external dependencies:
// a Target names one port to observe, a DesiredState names the port state a
// wait settles on. All entities are transient — one invocation, one value,
// no persistent state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
