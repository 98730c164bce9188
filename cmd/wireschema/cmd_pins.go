package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"wireschema/pins"
)

var pinsCmd = &cobra.Command{
	Use:   "pins [--out FILE] PACKAGES...",
	Short: "Write or extend a pin file from the hierarchies in PACKAGES",
	Long: "Scans PACKAGES for schema hierarchies and pins every derived type.\n\n" +
		"An existing file is extended, never rewritten: tags already pinned keep\n" +
		"their value and new derived types get the next free tag of their base.",
	Args: cobra.MinimumNArgs(1),
	RunE: runPins,
}

func init() {
	pinsCmd.Flags().StringP("out", "o", "schema.pins.yaml", "pin file to create or extend")
	pinsCmd.Flags().String("dir", "", "directory to resolve package patterns in")
	pinsCmd.Flags().Bool("dry-run", false, "print the resulting file instead of writing it")
}

func runPins(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	dir, _ := cmd.Flags().GetString("dir")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	logger := newLogger(cmd.ErrOrStderr())

	pairs, err := discover(logger, dir, args)
	if err != nil {
		return err
	}

	file, err := loadOrCreate(out)
	if err != nil {
		return err
	}

	added := file.Merge(pairs)
	file.Seal()

	logger.Info("merged pins", "file", out, "added", added, "total", len(file.Pairs()))

	if dryRun {
		data, err := pins.Marshal(file)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	}

	return pins.WriteFile(file, out)
}

func loadOrCreate(path string) (*pins.File, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &pins.File{Version: pins.CurrentVersion}, nil
		}

		return nil, fmt.Errorf("failed to stat pin file: %w", err)
	}

	return pins.LoadFile(path)
}
