package main

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/bzl/build/grammar"
	"github.com/dhamidi/bzl/build/parser"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newEbnfCheckCmd())
	cmd.AddCommand(newEbnfRecognizeCmd())
	cmd.AddCommand(newEbnfPrintCmd())

	return cmd
}

func loadGrammar(args []string) (ebnf.Grammar, error) {
	if len(args) == 0 {
		return grammar.Parse()
	}
	return grammar.LoadFile(args[0])
}

func newEbnfCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check [file]",
		Short:         "Parse and verify an EBNF grammar file (default: the BUILD grammar)",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(args)
			if err != nil {
				printErrors(cmd.OutOrStdout(), err)
				return err
			}

			if startProduction == "" {
				return nil
			}
			if err := ebnf.Verify(g, startProduction); err != nil {
				printErrors(cmd.OutOrStdout(), err)
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", grammar.Start, "start production for verification (if empty, only checks syntax)")

	return cmd
}

func newEbnfRecognizeCmd() *cobra.Command {
	var (
		grammarFile     string
		startProduction string
	)

	cmd := &cobra.Command{
		Use:           "recognize <BUILD file>...",
		Short:         "Check BUILD files against the reference grammar",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var grammarArgs []string
			if grammarFile != "" {
				grammarArgs = []string{grammarFile}
			}
			g, err := loadGrammar(grammarArgs)
			if err != nil {
				printErrors(cmd.OutOrStdout(), err)
				return err
			}
			r, err := grammar.NewRecognizer(g, startProduction)
			if err != nil {
				return err
			}
			lexical := grammar.NewLexical(g)

			failed := 0
			for _, filename := range args {
				src, err := os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
				lexer := parser.NewLexer(src, filename)
				tokens := lexer.Tokenize()
				lexErrs := append(lexer.Errors(), lexical.CheckTokens(tokens)...)
				for _, lexErr := range lexErrs {
					fmt.Fprintln(cmd.OutOrStdout(), lexErr)
				}
				if err := r.Recognize(tokens); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), err)
					failed++
					continue
				}
				if len(lexErrs) > 0 {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files rejected", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&grammarFile, "grammar", "", "grammar file (default: the embedded BUILD grammar)")
	cmd.Flags().StringVar(&startProduction, "start", grammar.Start, "start production")

	return cmd
}

func newEbnfPrintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the embedded BUILD grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(grammar.Source())
			return err
		},
	}
}

func printErrors(w io.Writer, err error) {
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(w, err)
	}
}
