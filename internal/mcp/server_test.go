package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/helixml/citetrack/domain/analytics"
	"github.com/helixml/citetrack/domain/opportunity"
	"github.com/helixml/citetrack/internal/domain"
	"github.com/helixml/citetrack/internal/log"
)

// fakeReporter implements Reporter with canned results and records the
// last call.
type fakeReporter struct {
	report  analytics.Report
	summary opportunity.Summary
	err     error

	tenantID string
	brandID  string
	window   int
	view     analytics.View
}

func (f *fakeReporter) Report(_ context.Context, tenantID, brandID string, windowDays int, view analytics.View) (analytics.Report, error) {
	f.tenantID, f.brandID, f.window, f.view = tenantID, brandID, windowDays, view
	if f.err != nil {
		return analytics.Report{}, f.err
	}
	r := f.report
	r.WindowDays = windowDays
	r.View = view
	return r, nil
}

func (f *fakeReporter) Opportunities(_ context.Context, tenantID, brandID string, windowDays int) (opportunity.Summary, error) {
	f.tenantID, f.brandID, f.window = tenantID, brandID, windowDays
	if f.err != nil {
		return opportunity.Summary{}, f.err
	}
	return f.summary, nil
}

var _ Reporter = (*fakeReporter)(nil)

func testReport() analytics.Report {
	return analytics.Report{
		GeneratedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Summary: analytics.Summary{
			TotalScans:         4,
			ScansWithCitations: 3,
			MentionRate:        50,
			CitationRate:       75,
		},
		URLs: []analytics.URLCitation{
			{URL: "https://acme.com/pricing", Domain: "acme.com", TotalCitations: 3, PromptCount: 2, IsBrand: true},
			{URL: "https://globex.com/blog", Domain: "globex.com", TotalCitations: 2, PromptCount: 1},
			{URL: "https://wiki.example.org/crm", Domain: "wiki.example.org", TotalCitations: 1, PromptCount: 1},
		},
		Domains: []analytics.DomainCitation{
			{Domain: "acme.com", TotalCitations: 3, UniqueURLs: 1, PromptCount: 2, IsBrand: true},
			{Domain: "globex.com", TotalCitations: 2, UniqueURLs: 1, PromptCount: 1},
		},
	}
}

func testServer(r *fakeReporter) *Server {
	return NewServer(r, "0.1.0-test", nil)
}

// sendMessage marshals a JSON-RPC request, sends it through HandleMessage,
// and returns the JSONRPCResponse.
func sendMessage(t *testing.T, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()
	return sendMessageContext(t, context.Background(), srv, method, id, params)
}

func sendMessageContext(t *testing.T, ctx context.Context, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	result := srv.MCPServer().HandleMessage(ctx, raw)

	resp, ok := result.(mcp.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T: %+v", result, result)
	}
	return resp
}

// resultJSON re-marshals the Result field through JSON into dst.
func resultJSON(t *testing.T, resp mcp.JSONRPCResponse, dst any) {
	t.Helper()
	b, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("unmarshal result into %T: %v", dst, err)
	}
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) mcp.CallToolResult {
	t.Helper()
	return callToolContext(t, context.Background(), srv, name, args)
}

func callToolContext(t *testing.T, ctx context.Context, srv *Server, name string, args map[string]any) mcp.CallToolResult {
	t.Helper()
	sendMessageContext(t, ctx, srv, "initialize", 1, initializeParams())
	resp := sendMessageContext(t, ctx, srv, "tools/call", 2, map[string]any{
		"name":      name,
		"arguments": args,
	})
	var result mcp.CallToolResult
	resultJSON(t, resp, &result)
	return result
}

// textFromContent extracts the text of the first content item. It
// round-trips through JSON because in-process responses may hold the
// content as a map rather than a typed struct.
func textFromContent(t *testing.T, result mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	b, err := json.Marshal(result.Content[0])
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	var tc struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &tc); err != nil {
		t.Fatalf("unmarshal text content: %v", err)
	}
	return tc.Text
}

func TestServer_Initialize(t *testing.T) {
	srv := testServer(&fakeReporter{})
	resp := sendMessage(t, srv, "initialize", 1, initializeParams())

	var result mcp.InitializeResult
	resultJSON(t, resp, &result)

	if result.ServerInfo.Name != ServerName {
		t.Errorf("expected server name %s, got %s", ServerName, result.ServerInfo.Name)
	}
	if result.ServerInfo.Version != "0.1.0-test" {
		t.Errorf("expected version 0.1.0-test, got %s", result.ServerInfo.Version)
	}
	if result.Capabilities.Tools == nil {
		t.Error("expected tools capability to be present")
	}
}

func TestServer_ListTools(t *testing.T) {
	srv := testServer(&fakeReporter{})
	sendMessage(t, srv, "initialize", 1, initializeParams())

	resp := sendMessage(t, srv, "tools/list", 2, nil)

	var result mcp.ListToolsResult
	resultJSON(t, resp, &result)

	names := make(map[string]mcp.Tool, len(result.Tools))
	for _, tool := range result.Tools {
		names[tool.Name] = tool
	}
	for _, want := range []string{"visibility_report", "find_opportunities", "cited_urls"} {
		tool, ok := names[want]
		if !ok {
			t.Errorf("expected tool %s to be registered", want)
			continue
		}
		required := strings.Join(tool.InputSchema.Required, ",")
		if !strings.Contains(required, "tenant_id") || !strings.Contains(required, "brand_id") {
			t.Errorf("tool %s: required = %q, want tenant_id and brand_id", want, required)
		}
	}
	if len(result.Tools) != 3 {
		t.Errorf("expected 3 tools, got %d", len(result.Tools))
	}
}

func TestServer_VisibilityReport(t *testing.T) {
	reporter := &fakeReporter{report: testReport()}
	srv := testServer(reporter)

	result := callTool(t, srv, "visibility_report", map[string]any{
		"tenant_id": "tenant-a",
		"brand_id":  "brand-1",
		"window":    7,
		"view":      "Unbranded",
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", textFromContent(t, result))
	}

	var report analytics.Report
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if report.Summary.CitationRate != 75 {
		t.Errorf("citation rate = %d, want 75", report.Summary.CitationRate)
	}
	if reporter.tenantID != "tenant-a" || reporter.brandID != "brand-1" {
		t.Errorf("called with tenant %q brand %q", reporter.tenantID, reporter.brandID)
	}
	if reporter.window != 7 {
		t.Errorf("window = %d, want 7", reporter.window)
	}
	if reporter.view != analytics.ViewUnbranded {
		t.Errorf("view = %q, want unbranded", reporter.view)
	}
}

func TestServer_VisibilityReportDefaults(t *testing.T) {
	reporter := &fakeReporter{report: testReport()}
	srv := testServer(reporter)

	result := callTool(t, srv, "visibility_report", map[string]any{
		"tenant_id": "tenant-a",
		"brand_id":  "brand-1",
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", textFromContent(t, result))
	}
	if reporter.window != 30 {
		t.Errorf("window = %d, want 30", reporter.window)
	}
	if reporter.view != analytics.ViewAll {
		t.Errorf("view = %q, want all", reporter.view)
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing tenant", args: map[string]any{"brand_id": "b"}, want: "tenant_id is required"},
		{name: "missing brand", args: map[string]any{"tenant_id": "t"}, want: "brand_id is required"},
		{name: "zero window", args: map[string]any{"tenant_id": "t", "brand_id": "b", "window": 0}, want: "positive"},
		{name: "huge window", args: map[string]any{"tenant_id": "t", "brand_id": "b", "window": 1000}, want: "at most 365"},
		{name: "bad view", args: map[string]any{"tenant_id": "t", "brand_id": "b", "view": "sideways"}, want: "view must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reporter := &fakeReporter{}
			result := callTool(t, testServer(reporter), "visibility_report", tc.args)
			if !result.IsError {
				t.Fatal("expected tool error")
			}
			if text := textFromContent(t, result); !strings.Contains(text, tc.want) {
				t.Errorf("error = %q, want it to contain %q", text, tc.want)
			}
			if reporter.tenantID != "" {
				t.Error("reporter should not be called for invalid arguments")
			}
		})
	}
}

func TestServer_FindOpportunities(t *testing.T) {
	reporter := &fakeReporter{summary: opportunity.Summary{
		EligiblePrompts: 5,
		OpportunityRate: 40,
		CoverageRate:    20,
	}}
	srv := testServer(reporter)

	result := callTool(t, srv, "find_opportunities", map[string]any{
		"tenant_id": "tenant-a",
		"brand_id":  "brand-1",
		"window":    14,
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", textFromContent(t, result))
	}

	var summary opportunity.Summary
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if summary.EligiblePrompts != 5 || summary.OpportunityRate != 40 {
		t.Errorf("summary = %+v", summary)
	}
	if reporter.window != 14 {
		t.Errorf("window = %d, want 14", reporter.window)
	}
}

func TestServer_CitedURLsLimit(t *testing.T) {
	srv := testServer(&fakeReporter{report: testReport()})

	result := callTool(t, srv, "cited_urls", map[string]any{
		"tenant_id": "tenant-a",
		"brand_id":  "brand-1",
		"limit":     2,
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", textFromContent(t, result))
	}

	var out citedURLs
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &out); err != nil {
		t.Fatalf("unmarshal cited urls: %v", err)
	}
	if out.Total != 3 {
		t.Errorf("total = %d, want 3", out.Total)
	}
	if len(out.URLs) != 2 {
		t.Fatalf("urls = %d, want 2", len(out.URLs))
	}
	if out.URLs[0].URL != "https://acme.com/pricing" {
		t.Errorf("first url = %s", out.URLs[0].URL)
	}
	if len(out.Domains) != 2 {
		t.Errorf("domains = %d, want 2", len(out.Domains))
	}
}

func TestServer_ErrorsArePublicMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: domain.NotFound("brand not found"), want: "brand not found"},
		{name: "upstream", err: domain.Upstream("load scans", context.DeadlineExceeded), want: "internal error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := testServer(&fakeReporter{err: tc.err})
			result := callTool(t, srv, "find_opportunities", map[string]any{
				"tenant_id": "tenant-a",
				"brand_id":  "brand-1",
			})
			if !result.IsError {
				t.Fatal("expected tool error")
			}
			if text := textFromContent(t, result); text != tc.want {
				t.Errorf("error = %q, want %q", text, tc.want)
			}
		})
	}
}

func TestServer_RequestTenant(t *testing.T) {
	ctx := log.WithTenantID(context.Background(), "tenant-b")

	t.Run("defaults to the request tenant", func(t *testing.T) {
		reporter := &fakeReporter{report: testReport()}
		srv := NewServer(reporter, "0.1.0-test", nil, WithRequestTenant())

		result := callToolContext(t, ctx, srv, "visibility_report", map[string]any{"brand_id": "brand-1"})

		if result.IsError {
			t.Fatalf("unexpected tool error: %s", textFromContent(t, result))
		}
		if reporter.tenantID != "tenant-b" {
			t.Errorf("tenant = %q, want tenant-b", reporter.tenantID)
		}
	})

	t.Run("matching argument is accepted", func(t *testing.T) {
		reporter := &fakeReporter{}
		srv := NewServer(reporter, "0.1.0-test", nil, WithRequestTenant())

		result := callToolContext(t, ctx, srv, "find_opportunities", map[string]any{
			"tenant_id": "tenant-b",
			"brand_id":  "brand-1",
		})

		if result.IsError {
			t.Fatalf("unexpected tool error: %s", textFromContent(t, result))
		}
		if reporter.tenantID != "tenant-b" {
			t.Errorf("tenant = %q, want tenant-b", reporter.tenantID)
		}
	})

	t.Run("other tenant argument is rejected", func(t *testing.T) {
		reporter := &fakeReporter{report: testReport()}
		srv := NewServer(reporter, "0.1.0-test", nil, WithRequestTenant())

		result := callToolContext(t, ctx, srv, "cited_urls", map[string]any{
			"tenant_id": "tenant-a",
			"brand_id":  "brand-1",
		})

		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if text := textFromContent(t, result); !strings.Contains(text, "does not match") {
			t.Errorf("error = %q, want a tenant mismatch", text)
		}
		if reporter.tenantID != "" {
			t.Error("reporter should not be called for another tenant")
		}
	})

	t.Run("missing request tenant is rejected", func(t *testing.T) {
		reporter := &fakeReporter{}
		srv := NewServer(reporter, "0.1.0-test", nil, WithRequestTenant())

		result := callTool(t, srv, "visibility_report", map[string]any{
			"tenant_id": "tenant-a",
			"brand_id":  "brand-1",
		})

		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if reporter.tenantID != "" {
			t.Error("reporter should not be called without a request tenant")
		}
	})
}

func TestServer_RequestTenantMakesArgumentOptional(t *testing.T) {
	srv := NewServer(&fakeReporter{}, "0.1.0-test", nil, WithRequestTenant())
	sendMessage(t, srv, "initialize", 1, initializeParams())
	resp := sendMessage(t, srv, "tools/list", 2, nil)

	var result mcp.ListToolsResult
	resultJSON(t, resp, &result)
	for _, tool := range result.Tools {
		for _, name := range tool.InputSchema.Required {
			if name == "tenant_id" {
				t.Errorf("tool %s requires tenant_id", tool.Name)
			}
		}
	}
}
