// Command lookahead reads slow or bursty input through a timeout sequence.
//
// Usage:
//
//	lookahead [flags] <command>
//
// Commands:
//
//	tail     - echo stdin lines, printing a heartbeat whenever input goes idle
//	demo     - run a synthetic slow source through both sequence variants
//	version  - show version information
package main

import (
	"fmt"
	"os"

	"github.com/kbukum/lookahead/cmd/lookahead/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
