package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vcache/internal/config"
	"github.com/vango-dev/vcache/internal/errors"
	"github.com/vango-dev/vcache/pkg/devtools"
	"github.com/vango-dev/vcache/pkg/metrics"
	"github.com/vango-dev/vcache/pkg/snapshot"
	"github.com/vango-dev/vcache/pkg/store"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		addr       string
		restore    bool
		saveOnExit bool
		anyOrigin  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cache with its HTTP inspector",
		Long: `Run an in-memory cache behind the devtools inspector.

With --restore the configured snapshot is loaded silently before the
server starts. With --save-on-exit the cache is written back to the
same snapshot on shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if restore {
				cfg.Snapshot.RestoreOnStart = true
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, serveOptions{
				saveOnExit: saveOnExit,
				anyOrigin:  anyOrigin,
			})
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from vcache.json)")
	cmd.Flags().BoolVar(&restore, "restore", false, "Restore the configured snapshot on start")
	cmd.Flags().BoolVar(&saveOnExit, "save-on-exit", false, "Save the configured snapshot on shutdown")
	cmd.Flags().BoolVar(&anyOrigin, "any-origin", false, "Accept /watch upgrades from any origin")

	return cmd
}

type serveOptions struct {
	saveOnExit bool
	anyOrigin  bool
}

func runServe(ctx context.Context, cfg *config.Config, opts serveOptions) error {
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	cache := store.New(store.WithLogger(logger))

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}

	devOpts := []devtools.Option{
		devtools.WithLogger(logger),
		devtools.WithTracerName(cfg.Server.TracerName),
		devtools.WithSnapshots(backend),
	}
	if opts.anyOrigin {
		devOpts = append(devOpts, devtools.WithCheckOrigin(func(*http.Request) bool { return true }))
	}

	if cfg.MetricsEnabled() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		_, unregister := metrics.Register(cache,
			metrics.WithRegistry(reg),
			metrics.WithNamespace(cfg.Metrics.Namespace))
		defer unregister()

		devOpts = append(devOpts, devtools.WithMetrics(
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			cfg.Metrics.Path))
	}

	name := cfg.Snapshot.Name
	if cfg.Snapshot.RestoreOnStart {
		err := snapshot.Load(ctx, backend, name, cache, store.SkipUpdate())
		switch {
		case errors.Is(err, snapshot.ErrNotFound):
			logger.Warn("no snapshot to restore", "snapshot", name)
		case err != nil:
			return err
		default:
			logger.Info("snapshot restored", "snapshot", name, "keys", cache.Len())
		}
	}

	srv := devtools.New(cache, devOpts...)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return err
	}

	if opts.saveOnExit {
		// ctx is already cancelled here.
		if err := snapshot.Save(context.Background(), backend, name, cache, snapshot.SkipUnencodable()); err != nil {
			return err
		}
		logger.Info("snapshot saved", "snapshot", name, "keys", cache.Len())
	}
	return nil
}
