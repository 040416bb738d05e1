package main

import (
	"fmt"
	"os"

	"github.com/marmos91/s3cli/cmd/s3cli/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	err := commands.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(commands.ExitCode())
}
