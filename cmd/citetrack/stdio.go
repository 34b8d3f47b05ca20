package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/citetrack/internal/mcp"
)

func stdioCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants read visibility reports, competitor opportunities and
cited URLs. The tools are read-only. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(*envFile)
		},
	}
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	logger, err := setup(cfg, os.Stderr)
	if err != nil {
		return err
	}
	logStartup(logger, "starting MCP server", cfg)

	client, err := openClient(cfg, logger, false)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	return mcp.NewServer(client.Analytics, version, logger).ServeStdio()
}
