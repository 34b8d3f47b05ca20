package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/helixml/citetrack"
	"github.com/helixml/citetrack/internal/config"
	"github.com/helixml/citetrack/internal/log"
)

// setup prepares the data directory and configures the default logger.
func setup(cfg config.AppConfig, logOut io.Writer) (*slog.Logger, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return log.Configure(cfg, logOut).Slog(), nil
}

// openClient builds a Client from cfg. The relay and scheduler only run when
// background is true.
func openClient(cfg config.AppConfig, logger *slog.Logger, background bool) (*citetrack.Client, error) {
	opts := append(citetrack.WithConfig(cfg), citetrack.WithLogger(logger))
	if !background {
		opts = append(opts, citetrack.WithoutBackground())
	}

	client, err := citetrack.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create citetrack client: %w", err)
	}
	return client, nil
}

func closeClient(client *citetrack.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close citetrack client", slog.Any("error", err))
	}
}

// logStartup records the effective configuration without secrets.
func logStartup(logger *slog.Logger, msg string, cfg config.AppConfig) {
	logger.LogAttrs(context.Background(), slog.LevelInfo, msg,
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
		slog.Bool("redis", cfg.Redis().IsConfigured()),
		slog.String("scan_cron", cfg.ScanCron()),
		slog.Int("api_keys", len(cfg.APIKeys())),
	)
}
