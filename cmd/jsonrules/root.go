package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"nocartorio/jsonrules/pkg/cli"
	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jsonrules",
	Short: "jsonrules - rule-document based validation of JSON and YAML data",
	Long: `jsonrules validates data trees against rulesets: named collections of
rule documents that map each field to a pipe-separated rule string such as
"text|nullable" or "file,address".

It can be used:
  - from the command line, to check data files and lint rulesets
  - as an HTTP service, with hot reload, Prometheus metrics and health probes
  - as a source of validation history, when audit recording is enabled`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "jsonrules.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configuration named by --config, applies flag
// overrides, installs it as the global configuration and sets up the
// default logger from it.
func loadConfig(overrides ...func(*config.Config)) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, cli.NewConfigError("", err.Error())
	}
	for _, override := range overrides {
		override(cfg)
	}
	config.SetConfig(cfg)

	logCfg := logging.FromConfig(cfg.Telemetry.Logging)
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.Setup(logCfg)
	if err != nil {
		return nil, nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	return cfg, logger, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
