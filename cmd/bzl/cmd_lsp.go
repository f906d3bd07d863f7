package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/bzl/lsp"
)

func newLSPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := ""
			if cmd.Flags().Changed("config") {
				configPath = opts.configPath
			}
			server := lsp.NewServer(version, configPath)
			return server.RunStdio()
		},
	}
}
