package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"wireschema/internal/diagnostic"
	"wireschema/pins"
)

var checkCmd = &cobra.Command{
	Use:   "check --pins FILE PACKAGES...",
	Short: "Verify that a pin file covers every derived type in PACKAGES",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("pins", "schema.pins.yaml", "pin file to check")
	checkCmd.Flags().String("dir", "", "directory to resolve package patterns in")
	checkCmd.Flags().Bool("json", false, "print the report as JSON")
}

type checkReport struct {
	Pins        string                  `json:"pins"`
	Pairs       []pins.Pair             `json:"pairs"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("pins")
	dir, _ := cmd.Flags().GetString("dir")
	asJSON, _ := cmd.Flags().GetBool("json")

	logger := newLogger(cmd.ErrOrStderr())

	file, err := pins.LoadFile(path)
	if err != nil {
		return err
	}

	pairs, err := discover(logger, dir, args)
	if err != nil {
		return err
	}

	diags := pins.Check(file, pairs)

	report := checkReport{Pins: path, Pairs: pairs, Diagnostics: diags.All()}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, d := range report.Diagnostics {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", d.Severity, d)
		}
	}

	if diags.HasErrors() {
		return fmt.Errorf("%s: %d error(s)", path, len(diags.Errors))
	}

	logger.Debug("pin file is complete", "file", path, "pairs", len(pairs))

	return nil
}
