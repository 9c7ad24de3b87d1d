// fxplay plays animation scripts against the fx scheduler and prints the
// snapshots they record.
//
// Usage:
//
//	fxplay run <script> [--fps=60] [--max-frames=10000] [--metrics]
//	fxplay run <script> --realtime [--timeout=30s]
//	fxplay validate <script>
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
