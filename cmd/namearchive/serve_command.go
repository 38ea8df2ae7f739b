package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"namearchive/internal/logging"
	"namearchive/internal/namestore"
	"namearchive/internal/ogcache"
	"namearchive/internal/ratelimit"
	"namearchive/internal/resolve"
	"namearchive/internal/server"
	"namearchive/internal/services/gemini"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the archive HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			logger, err := logging.NewForDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}

			lock := flock.New(cfg.LockFilePath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire serve lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another instance is already serving (lock %s)", cfg.LockFilePath())
			}
			defer func() { _ = lock.Unlock() }()

			store, err := namestore.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			seeded, err := store.SeedIfEmpty(ctx)
			if err != nil {
				return fmt.Errorf("seed store: %w", err)
			}
			if seeded > 0 {
				logger.Info("seeded initial names", logging.Int("count", seeded))
			}

			limiter := ratelimit.New(
				time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
				cfg.RateLimit.MaxRequests)
			generator := gemini.NewClient(cfg.Gemini)
			resolver := resolve.New(store, limiter, generator, logger)
			previews := ogcache.New(cfg.PreviewCacheDir(), store, logger)

			srv := server.New(cfg, store, resolver, previews, logger)
			if err := srv.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			srv.Stop()
			logger.Info("server stopped")
			return nil
		},
	}
}
