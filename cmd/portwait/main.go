// Package main is the entry point for the portwait CLI.
//
// The binary probes TCP ports and waits for them to become free or used.
// All functionality lives in the internal/cli package, which defines the
// cobra commands; the reusable probing and polling primitives live in
// pkg/portwait.
package main

import (
	"github.com/mmr-tortoise/portwait/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
// During development they default to "dev", "none", and "unknown".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
