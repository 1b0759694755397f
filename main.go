// opsdeck - Docker control deck for a remote host
// Main entry point for the application
package main

import (
	"opsdeck/cmd"
)

var (
	// Version is set during build via ldflags
	Version = "dev"
	// BuildTime is set during build via ldflags
	BuildTime = "unknown"
	// Commit is set during build via ldflags
	Commit = "unknown"
)

func main() {
	cmd.Version = Version
	cmd.BuildTime = BuildTime
	cmd.Commit = Commit

	cmd.Execute()
}
