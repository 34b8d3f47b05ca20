// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/citetrack/application/service"
	"github.com/helixml/citetrack/domain/analytics"
	"github.com/helixml/citetrack/domain/opportunity"
	"github.com/helixml/citetrack/internal/domain"
	"github.com/helixml/citetrack/internal/log"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "citetrack"

// defaultURLLimit caps cited_urls when the caller gives no limit.
const defaultURLLimit = 25

// Reporter provides the read-only analytics the tools expose.
type Reporter interface {
	Report(ctx context.Context, tenantID, brandID string, windowDays int, view analytics.View) (analytics.Report, error)
	Opportunities(ctx context.Context, tenantID, brandID string, windowDays int) (opportunity.Summary, error)
}

// Server wraps the MCP server with citation analytics tools.
type Server struct {
	mcpServer     *server.MCPServer
	reporter      Reporter
	logger        *slog.Logger
	requestTenant bool
}

// Option configures a Server.
type Option func(*Server)

// WithRequestTenant scopes every tool call to the tenant stored in the
// request context. A tenant_id argument is then optional and must match it.
// Use it whenever the server is reachable over HTTP.
func WithRequestTenant() Option {
	return func(s *Server) {
		s.requestTenant = true
	}
}

// NewServer creates a new MCP server backed by reporter.
func NewServer(reporter Reporter, version string, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		reporter: reporter,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) tenantArg() mcp.ToolOption {
	if s.requestTenant {
		return mcp.WithString("tenant_id",
			mcp.Description("Tenant that owns the brand. Defaults to the caller's tenant and must match it"),
		)
	}
	return mcp.WithString("tenant_id",
		mcp.Required(),
		mcp.Description("Tenant that owns the brand"),
	)
}

func (s *Server) brandArgs(description string, extra ...mcp.ToolOption) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithReadOnlyHintAnnotation(true),
		s.tenantArg(),
		mcp.WithString("brand_id",
			mcp.Required(),
			mcp.Description("Brand UUID"),
		),
		mcp.WithNumber("window",
			mcp.Description(fmt.Sprintf("Reporting window in days (default: %d, max: %d)", service.DefaultWindowDays, service.MaxWindowDays)),
		),
	}
	return append(opts, extra...)
}

func viewArg() mcp.ToolOption {
	return mcp.WithString("view",
		mcp.Description("Which prompts to include: all, unbranded or branded (default: all)"),
		mcp.Enum(string(analytics.ViewAll), string(analytics.ViewUnbranded), string(analytics.ViewBranded)),
	)
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("visibility_report", s.brandArgs(
			"Summarize how often AI assistants mention and cite a brand, with per-stage funnel stats and a daily timeline",
			viewArg(),
		)...),
		s.handleVisibilityReport,
	)

	mcpServer.AddTool(
		mcp.NewTool("find_opportunities", s.brandArgs(
			"List prompt groups where competitors are cited and the brand is not",
		)...),
		s.handleFindOpportunities,
	)

	mcpServer.AddTool(
		mcp.NewTool("cited_urls", s.brandArgs(
			"List the URLs AI assistants cite most for a brand's prompts",
			viewArg(),
			mcp.WithNumber("limit",
				mcp.Description(fmt.Sprintf("Maximum number of URLs to return (default: %d)", defaultURLLimit)),
			),
		)...),
		s.handleCitedURLs,
	)
}

type brandRequest struct {
	tenantID string
	brandID  string
	window   int
	view     analytics.View
}

func (s *Server) parseBrandRequest(ctx context.Context, request mcp.CallToolRequest) (brandRequest, error) {
	tenantID, err := s.resolveTenant(ctx, request)
	if err != nil {
		return brandRequest{}, err
	}
	brandID, err := request.RequireString("brand_id")
	if err != nil || strings.TrimSpace(brandID) == "" {
		return brandRequest{}, domain.Validation("brand_id is required")
	}

	window := request.GetInt("window", service.DefaultWindowDays)
	if err := service.ValidateWindow(window); err != nil {
		return brandRequest{}, err
	}

	view, err := analytics.ParseView(strings.ToLower(request.GetString("view", "")))
	if err != nil {
		return brandRequest{}, domain.Validation("view must be one of all, unbranded, branded")
	}

	return brandRequest{
		tenantID: tenantID,
		brandID:  strings.TrimSpace(brandID),
		window:   window,
		view:     view,
	}, nil
}

// resolveTenant returns the tenant a call is scoped to. Over HTTP that is
// the request tenant and a differing argument is rejected.
func (s *Server) resolveTenant(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	arg := strings.TrimSpace(request.GetString("tenant_id", ""))
	if !s.requestTenant {
		if arg == "" {
			return "", domain.Validation("tenant_id is required")
		}
		return arg, nil
	}

	tenantID := log.TenantID(ctx)
	if tenantID == "" {
		return "", domain.Validation("request has no tenant")
	}
	if arg != "" && arg != tenantID {
		return "", domain.Validation("tenant_id does not match the request tenant")
	}
	return tenantID, nil
}

func (s *Server) handleVisibilityReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := s.parseBrandRequest(ctx, request)
	if err != nil {
		return s.toolError(ctx, "visibility_report", err), nil
	}

	report, err := s.reporter.Report(ctx, req.tenantID, req.brandID, req.window, req.view)
	if err != nil {
		return s.toolError(ctx, "visibility_report", err), nil
	}

	return jsonResult(report)
}

func (s *Server) handleFindOpportunities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := s.parseBrandRequest(ctx, request)
	if err != nil {
		return s.toolError(ctx, "find_opportunities", err), nil
	}

	summary, err := s.reporter.Opportunities(ctx, req.tenantID, req.brandID, req.window)
	if err != nil {
		return s.toolError(ctx, "find_opportunities", err), nil
	}

	return jsonResult(summary)
}

// citedURLs is the cited_urls tool result.
type citedURLs struct {
	WindowDays int                        `json:"window_days"`
	View       analytics.View             `json:"view"`
	Total      int                        `json:"total"`
	URLs       []analytics.URLCitation    `json:"urls"`
	Domains    []analytics.DomainCitation `json:"domains"`
}

func (s *Server) handleCitedURLs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := s.parseBrandRequest(ctx, request)
	if err != nil {
		return s.toolError(ctx, "cited_urls", err), nil
	}
	limit := request.GetInt("limit", defaultURLLimit)
	if limit <= 0 {
		return s.toolError(ctx, "cited_urls", domain.Validation("limit must be positive")), nil
	}

	report, err := s.reporter.Report(ctx, req.tenantID, req.brandID, req.window, req.view)
	if err != nil {
		return s.toolError(ctx, "cited_urls", err), nil
	}

	urls := report.URLs
	if len(urls) > limit {
		urls = urls[:limit]
	}
	domains := report.Domains
	if len(domains) > limit {
		domains = domains[:limit]
	}

	return jsonResult(citedURLs{
		WindowDays: report.WindowDays,
		View:       report.View,
		Total:      len(report.URLs),
		URLs:       urls,
		Domains:    domains,
	})
}

// toolError converts err into a tool-level error result. Internal failures
// are logged and reported without their cause.
func (s *Server) toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	switch domain.Category(err) {
	case domain.ErrUpstream, domain.ErrUnexpected:
		s.logger.ErrorContext(ctx, "mcp tool failed",
			slog.String("tool", tool),
			slog.Any("error", err),
		)
	}
	return mcp.NewToolResultError(domain.PublicMessage(err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server for HTTP or stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
