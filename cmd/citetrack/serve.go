package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/citetrack/infrastructure/api"
	"github.com/helixml/citetrack/internal/config"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(envFile *string) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server, outbox relay and scan scheduler",
		Long: `Start the HTTP API server together with the outbox relay and the scan scheduler.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables (all prefixed with CITETRACK_):
  HOST                   Server host to bind to (default: 0.0.0.0)
  PORT                   Server port to listen on (default: 8080)
  DATA_DIR               Data directory (default: ~/.citetrack)
  DB_URL                 Database URL (default: sqlite:///{data_dir}/citetrack.db)
  LOG_LEVEL              Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT             Log format: pretty, json (default: pretty)
  API_KEYS               Comma-separated list of valid API keys
  REDIS_URL              Redis URL for workflow events (default: log only)
  REDIS_STREAM           Redis stream name (default: citetrack:workflow)
  RELAY_POLL_INTERVAL    Outbox poll interval (default: 1s)
  RELAY_MAX_ATTEMPTS     Delivery attempts before an event fails (default: 5)
  SCAN_CRON              Schedule for run_scan triggers (default: 0 6 * * *)
  ACTION_RATE_LIMIT      Actions per second per tenant, 0 for unlimited
  ANALYTICS_CACHE_SIZE   Cached reports (default: 256)
  BLOCKLIST_FILE         YAML list of names never treated as competitors`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	logger, err := setup(cfg, os.Stdout)
	if err != nil {
		return err
	}
	logStartup(logger, "starting citetrack", cfg)

	client, err := openClient(cfg, logger, true)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	apiServer := api.NewAPIServer(client, cfg.APIKeys()).
		WithVersion(version).
		WithActionRateLimit(cfg.ActionRateLimit())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.ListenAndServe(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	return <-errCh
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
