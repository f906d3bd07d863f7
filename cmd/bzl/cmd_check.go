package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/bzl/build/parser"
	"github.com/dhamidi/bzl/format"
	"github.com/dhamidi/bzl/workspace"
)

type checkedFile struct {
	path    string
	content []byte
	file    *parser.File
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report syntax errors in BUILD files",
		Long: `Report syntax errors in BUILD files.

Directories are searched for the files named by the include patterns of
the settings file. Without arguments the current directory is checked.
Exits with status 1 when any file has errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("unknown format %q", outputFormat)
			}

			var files []checkedFile
			for _, path := range args {
				found, err := collect(cmd.Context(), opts, path)
				if err != nil {
					return err
				}
				files = append(files, found...)
			}

			errorCount := 0
			for _, f := range files {
				errorCount += len(f.file.Errors)
			}

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "json":
				parsed := make([]*parser.File, len(files))
				for i, f := range files {
					f.file.Path = f.path
					parsed[i] = f.file
				}
				if err := format.WriteJSONReport(out, parsed); err != nil {
					return err
				}
			default:
				printer := format.NewDiagnosticPrinter(out, format.ColorEnabled(opts.config.Color))
				for _, f := range files {
					if err := printer.Print(f.path, f.content, f.file.Errors); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.ErrOrStderr(), format.Summary(len(files), errorCount))
			}

			if errorCount > 0 {
				return fmt.Errorf("found %d syntax errors", errorCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")

	return cmd
}

// collect parses path, or every included file below it when it is a
// directory.
func collect(ctx context.Context, opts *globalOptions, path string) ([]checkedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}

	if !info.IsDir() {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		file := parser.Parse(content, parser.WithFile(path))
		return []checkedFile{{path: path, content: content, file: file}}, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ws := workspace.New(path, opts.config)
	if err := ws.ScanAll(ctx); err != nil {
		return nil, err
	}
	var files []checkedFile
	for _, f := range ws.Files() {
		files = append(files, checkedFile{path: f.Path, content: f.Content, file: f.File})
	}
	return files, nil
}
