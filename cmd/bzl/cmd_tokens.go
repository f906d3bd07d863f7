package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/bzl/build/parser"
	"github.com/dhamidi/bzl/format"
)

func newTokensCmd() *cobra.Command {
	var whitespace bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "List the tokens of a BUILD file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			lexer := parser.NewLexer(src, args[0])
			return format.NewTokensEncoder(cmd.OutOrStdout(), whitespace).Encode(lexer.Tokenize())
		},
	}

	cmd.Flags().BoolVar(&whitespace, "whitespace", false, "include whitespace tokens")

	return cmd
}
