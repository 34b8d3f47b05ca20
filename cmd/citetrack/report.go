package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/helixml/citetrack/application/service"
	"github.com/helixml/citetrack/domain/analytics"
)

const defaultTopURLs = 10

type reportOptions struct {
	tenantID string
	brandID  string
	window   int
	view     string
	top      int
	format   string
}

func reportCmd(envFile *string) *cobra.Command {
	opts := reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a brand's visibility report",
		Long: `Print a brand's visibility report: headline numbers, the funnel breakdown
and the most cited URLs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), *envFile, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.tenantID, "tenant", "", "Tenant that owns the brand")
	cmd.Flags().StringVar(&opts.brandID, "brand", "", "Brand UUID")
	cmd.Flags().IntVar(&opts.window, "window", service.DefaultWindowDays, "Reporting window in days")
	cmd.Flags().StringVar(&opts.view, "view", string(analytics.ViewAll), "Prompt view: all, unbranded, branded")
	cmd.Flags().IntVar(&opts.top, "top", defaultTopURLs, "Number of cited URLs to show")
	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format: table, json")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("brand")

	return cmd
}

func runReport(ctx context.Context, envFile string, opts reportOptions, out io.Writer) error {
	view, err := analytics.ParseView(strings.ToLower(opts.view))
	if err != nil {
		return err
	}
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	logger, err := setup(cfg, os.Stderr)
	if err != nil {
		return err
	}

	client, err := openClient(cfg, logger, false)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	if ctx == nil {
		ctx = context.Background()
	}
	report, err := client.Analytics.Report(ctx, opts.tenantID, opts.brandID, opts.window, view)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	renderReport(out, report, opts.top)
	return nil
}

// renderReport writes the report as three tables.
func renderReport(out io.Writer, r analytics.Report, top int) {
	summary := table.NewWriter()
	summary.SetOutputMirror(out)
	summary.SetStyle(table.StyleLight)
	summary.SetTitle(fmt.Sprintf("Visibility, last %d days (%s)", r.WindowDays, r.View))
	summary.AppendRows([]table.Row{
		{"Scans", r.Summary.TotalScans},
		{"Scans with citations", r.Summary.ScansWithCitations},
		{"Mention rate", percent(r.Summary.MentionRate)},
		{"Citation rate", percent(r.Summary.CitationRate)},
		{"Sentiment", optionalInt(r.Summary.SentimentScore)},
		{"Average position", optionalFloat(r.Summary.AveragePosition)},
		{"Trend", signed(r.Summary.Trend)},
		{"Brand URLs cited", r.Summary.BrandURLs},
	})
	summary.Render()

	funnel := table.NewWriter()
	funnel.SetOutputMirror(out)
	funnel.SetStyle(table.StyleLight)
	funnel.AppendHeader(table.Row{"Stage", "Scans", "Mentioned", "Cited", "Memos", "Drafts", "Signal"})
	for _, s := range r.Funnel {
		funnel.AppendRow(table.Row{
			s.Stage,
			s.ScanCount,
			percent(s.MentionRate),
			percent(s.CitationRate),
			s.PublishedMemos,
			s.DraftMemos,
			string(s.Classification),
		})
	}
	funnel.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	funnel.Render()

	urls := table.NewWriter()
	urls.SetOutputMirror(out)
	urls.SetStyle(table.StyleLight)
	urls.AppendHeader(table.Row{"#", "URL", "Citations", "Prompts", "Brand"})
	shown := r.URLs
	if top > 0 && len(shown) > top {
		shown = shown[:top]
	}
	for i, u := range shown {
		brand := ""
		if u.IsBrand {
			brand = "yes"
		}
		urls.AppendRow(table.Row{i + 1, u.URL, u.TotalCitations, u.PromptCount, brand})
	}
	if len(r.URLs) > len(shown) {
		urls.AppendFooter(table.Row{"", fmt.Sprintf("%d more", len(r.URLs)-len(shown)), "", "", ""})
	}
	urls.Render()
}

func percent(n int) string { return strconv.Itoa(n) + "%" }

func signed(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
