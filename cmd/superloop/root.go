package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/comalice/superloop/internal/config"
	"github.com/comalice/superloop/internal/logger"
)

var (
	rootOpts = struct {
		config    string
		logLevel  string
		logFormat string
	}{}

	// cfg is loaded once by the root command before any subcommand runs.
	cfg config.Config
	log *zap.SugaredLogger

	rootCmd = &cobra.Command{
		Use:           "superloop",
		Short:         "Run cooperative super-loop tasks on a simulated board",
		Long:          "Run the heartbeat, hold LED, user app and board test tasks on a simulated dev board, one pass per tick.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if rootOpts.config != "" {
				cfg, err = config.Load(rootOpts.config)
			} else {
				cfg = config.Default()
			}
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = rootOpts.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = rootOpts.logFormat
			}
			logger.Initialize(logger.New(logger.LogLevel(cfg.Log.Level), logger.ParseFormat(cfg.Log.Format, logger.FormatConsole)))
			log = logger.For(logger.ComponentCLI)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.config, "config", "c", "", "board file (YAML); defaults to the dot-matrix demo")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(runCmd, graphCmd, inspectCmd)
}
