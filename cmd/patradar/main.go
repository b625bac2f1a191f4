// Command patradar is the single entry point: the API server, the event
// worker, and the client commands are all subcommands of one binary.
package main

import (
	"os"

	"github.com/turtacn/patent-radar/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
