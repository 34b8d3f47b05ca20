package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func relayCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Run the outbox relay and scan scheduler without the HTTP API",
		Long: `Run the outbox relay and the scan scheduler as a standalone worker.

Use this when the API runs elsewhere and shares the same database. Events
written by the API are forwarded to the configured transport.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay(*envFile)
		},
	}
}

func runRelay(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger, err := setup(cfg, os.Stdout)
	if err != nil {
		return err
	}
	logStartup(logger, "starting citetrack relay", cfg)

	client, err := openClient(cfg, logger, true)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("stopping relay")
	return nil
}
