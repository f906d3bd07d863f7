package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/bzl/config"
)

const version = "0.1.0"

type globalOptions struct {
	configPath string
	verbose    int
	logFile    string
	config     *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "bzl",
		Short:         "Parse and check Bazel BUILD files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flagPath := ""
			if cmd.Flags().Changed("config") {
				flagPath = opts.configPath
			}
			cfg, err := config.Load(config.Path(flagPath, config.FileName))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Log.Level = opts.verbose
			}
			if opts.logFile != "" {
				cfg.Log.File = opts.logFile
			}
			opts.config = cfg

			var logPath *string
			if cfg.Log.File != "" {
				logPath = &cfg.Log.File
			}
			commonlog.Configure(cfg.Log.Level, logPath)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (default $BZL_CONFIG or "+config.FileName+")")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "log verbosity (repeat for more)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))
	rootCmd.AddCommand(newInitCmd())

	return rootCmd
}
