// Command wingroup is a grouped window list for tmux. "wingroup panel" runs
// the bar in a pane; the other commands talk to a running panel or manage
// its config.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
