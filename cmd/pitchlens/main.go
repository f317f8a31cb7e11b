// Command pitchlens analyses and generates startup pitches from the command
// line. Results are printed as indented JSON on stdout; logs go to stderr.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
