// Package main provides the CLI entrypoint for wireschema.
//
// wireschema works with the static side of the schema system:
//   - pins: scans Go packages for schema hierarchies and writes a pin file
//   - check: reports derived types a pin file is missing, and stale pins
//   - diag: prints a CBOR payload in diagnostic notation
package main

import (
	"fmt"
	"os"
)

const appName = "wireschema"

var flagVerbose bool

func main() {
	rootCmd.AddCommand(pinsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(diagCmd)

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(1)
	}
}
