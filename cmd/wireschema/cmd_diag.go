package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wireschema/wire"
)

var diagCmd = &cobra.Command{
	Use:   "diag [FILE]",
	Short: "Print a CBOR payload in diagnostic notation",
	Long:  "Reads a payload from FILE, or from standard input when FILE is omitted or \"-\".",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)

		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}

		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}

		text, err := wire.Diagnose(data)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)

		return err
	},
}
