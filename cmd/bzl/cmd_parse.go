package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/bzl/build/parser"
	"github.com/dhamidi/bzl/format"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var includePositions bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a BUILD file and dump the syntax tree",
		Long: `Parse a BUILD file and dump the syntax tree.

The tree is printed even when the file has syntax errors; error nodes are
marked in the output and the errors are reported on stderr. Use - to read
from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			src, err := readInput(filename, cmd.InOrStdin())
			if err != nil {
				return err
			}

			file := parser.Parse(src, parser.WithFile(filename), parser.WithComments())

			encoder, err := format.New(outputFormat, cmd.OutOrStdout(), includePositions)
			if err != nil {
				return err
			}
			if err := encoder.Encode(file); err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			if outputFormat != "json" && len(file.Errors) > 0 {
				printer := format.NewDiagnosticPrinter(cmd.ErrOrStderr(), false)
				return printer.Print(filename, src, file.Errors)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (tree, json)")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "include spans in tree output")

	return cmd
}
