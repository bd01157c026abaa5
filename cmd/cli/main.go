// LogLens - Log Parsing and Analysis Tool
//
// LogLens parses log files in common formats into normalized entries that
// can be searched, summarized and exported.
package main

import (
	"os"

	"github.com/ccollicutt/loglens/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
