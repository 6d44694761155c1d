package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"nocartorio/jsonrules/pkg/audit"
	"nocartorio/jsonrules/pkg/cli"
	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/jsonrules"
	"nocartorio/jsonrules/pkg/rules/store"
	"nocartorio/jsonrules/pkg/server"
	"nocartorio/jsonrules/pkg/telemetry/metrics"
	"nocartorio/jsonrules/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation HTTP server",
	Long: `Start the validation HTTP server for every configured ruleset.

The server validates request bodies on POST /v1/rulesets/{name}/validate,
exposes health probes on /healthz and /readyz, and Prometheus metrics on
the configured metrics path. Rulesets are reloaded when their files change
(watch.enabled) and on the optional watch.reload_schedule cron expression.

Examples:
  # Start with default config
  jsonrules serve

  # Override listen address and enable file watching
  jsonrules serve --listen 0.0.0.0:8088 --watch

  # Load every ruleset and exit without serving
  jsonrules serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "reload rulesets when their files change")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "load rulesets without starting server")
}

// serveRuntime holds everything serve starts, so it can be torn down in
// reverse order.
type serveRuntime struct {
	cfg        *config.Config
	logger     *slog.Logger
	validators []*jsonrules.Validator
	collector  *metrics.Collector
	audit      audit.Store
	watchers   []*store.Watcher
	scheduler  *store.ReloadScheduler
	server     *server.Server
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(func(cfg *config.Config) {
		if serveFlags.listenAddress != "" {
			cfg.Server.ListenAddress = serveFlags.listenAddress
		}
		if serveFlags.logLevel != "" {
			cfg.Telemetry.Logging.Level = serveFlags.logLevel
		}
		if serveFlags.watch {
			cfg.Watch.Enabled = true
		}
	})
	if err != nil {
		return err
	}

	rt, err := newServeRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	if serveFlags.dryRun {
		fmt.Fprintf(out, "✓ Configuration valid, %d ruleset(s) loaded\n", len(rt.validators))
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	if err := rt.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "jsonrules %s listening on %s\n", Version, cfg.Server.ListenAddress)
	if err := rt.server.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// newServeRuntime loads one validator per configured ruleset and wires
// them to a shared metrics collector and audit store.
func newServeRuntime(cfg *config.Config, logger *slog.Logger) (*serveRuntime, error) {
	tracing.InstallPropagator()

	rt := &serveRuntime{
		cfg:       cfg,
		logger:    logger.With("component", "serve"),
		collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}

	if cfg.Audit.Enabled {
		s, err := audit.Open(cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		rt.audit = s
	}

	for _, name := range store.Catalog(cfg.Rulesets).Rulesets() {
		opts := []jsonrules.Option{
			jsonrules.WithConfig(cfg),
			jsonrules.WithLogger(logger),
			jsonrules.WithMetrics(rt.collector),
		}
		if rt.audit != nil {
			opts = append(opts, jsonrules.WithAudit(rt.audit))
		}

		v, err := jsonrules.New(name, opts...)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to load ruleset %q: %w", name, err)
		}
		rt.validators = append(rt.validators, v)
	}

	reloaders := make([]store.Reloader, 0, len(rt.validators))
	for _, v := range rt.validators {
		reloaders = append(reloaders, v)
	}
	scheduler, err := store.NewReloadScheduler(cfg.Watch.ReloadSchedule, logger, reloaders...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.scheduler = scheduler

	rt.server = server.New(cfg, rt.validators, rt.collector, server.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	}, logger)

	return rt, nil
}

// Start launches file watchers and the reload scheduler. Both stop when
// ctx is cancelled.
func (rt *serveRuntime) Start(ctx context.Context) error {
	if rt.cfg.Watch.Enabled {
		for _, v := range rt.validators {
			w, err := store.NewWatcher(v.Store(), rt.cfg.Watch.Debounce, rt.logger)
			if err != nil {
				rt.logger.Warn("File watching unavailable for ruleset",
					"ruleset", v.Ruleset(),
					"error", err,
				)
				continue
			}
			rt.watchers = append(rt.watchers, w)
			go func() {
				if err := w.Watch(ctx); err != nil {
					rt.logger.Error("Rule file watcher failed", "ruleset", v.Ruleset(), "error", err)
				}
			}()
		}
	}

	return rt.scheduler.Start(ctx)
}

// Close stops watchers and the scheduler, then releases validators and the
// shared audit store. It is safe to call more than once.
func (rt *serveRuntime) Close() error {
	var errs []error

	for _, w := range rt.watchers {
		if err := w.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.watchers = nil

	if rt.scheduler != nil {
		rt.scheduler.Stop()
	}

	for _, v := range rt.validators {
		if err := v.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.validators = nil

	if rt.audit != nil {
		if err := rt.audit.Close(); err != nil {
			errs = append(errs, err)
		}
		rt.audit = nil
	}

	return errors.Join(errs...)
}
