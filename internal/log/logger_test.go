package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/helixml/citetrack/internal/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	return data
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []config.LogFormat{config.LogFormatPretty, config.LogFormatJSON} {
		cfg := config.NewAppConfigWithOptions(
			config.WithLogLevel("INFO"),
			config.WithLogFormat(format),
		)

		logger := NewLogger(cfg, io.Discard)

		if logger == nil || logger.Slog() == nil {
			t.Fatalf("NewLogger(%s) returned nil", format)
		}
	}
}

func TestLogger_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "DEBUG").Slog()

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 log lines, got %d", len(lines))
	}
	for i, line := range lines {
		var data map[string]any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.With("component", "relay").Slog().Info("test message")

	if got := decodeLine(t, &buf)["component"]; got != "relay" {
		t.Errorf("expected component=relay, got %v", got)
	}
}

func TestLogger_ContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO").Slog()

	ctx := context.Background()
	ctx = WithCorrelationID(ctx, "corr-123")
	ctx = WithRequestID(ctx, "req-456")
	ctx = WithTenantID(ctx, "tenant-a")

	logger.With("component", "api").InfoContext(ctx, "test message")

	data := decodeLine(t, &buf)
	if data["correlation_id"] != "corr-123" {
		t.Errorf("expected correlation_id=corr-123, got %v", data["correlation_id"])
	}
	if data["request_id"] != "req-456" {
		t.Errorf("expected request_id=req-456, got %v", data["request_id"])
	}
	if data["tenant_id"] != "tenant-a" {
		t.Errorf("expected tenant_id=tenant-a, got %v", data["tenant_id"])
	}
}

func TestLogger_NoContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO").Slog()

	logger.InfoContext(context.Background(), "test message")

	data := decodeLine(t, &buf)
	for _, key := range []string{"correlation_id", "request_id", "tenant_id"} {
		if _, ok := data[key]; ok {
			t.Errorf("should not have %s when not set", key)
		}
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	if CorrelationID(ctx) != "" || RequestID(ctx) != "" || TenantID(ctx) != "" {
		t.Error("accessors should be empty when not set")
	}

	ctx = WithTenantID(WithRequestID(WithCorrelationID(ctx, "c"), "r"), "t")
	if CorrelationID(ctx) != "c" {
		t.Errorf("CorrelationID() = %v, want 'c'", CorrelationID(ctx))
	}
	if RequestID(ctx) != "r" {
		t.Errorf("RequestID() = %v, want 'r'", RequestID(ctx))
	}
	if TenantID(ctx) != "t" {
		t.Errorf("TenantID() = %v, want 't'", TenantID(ctx))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DEBUG", "DEBUG"},
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"WARN", "WARN"},
		{"WARNING", "WARN"},
		{" error ", "ERROR"},
		{"unknown", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := ParseLevel(tt.input)
			if level.String() != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, level.String(), tt.expected)
			}
		})
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN").Slog()

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
}

func TestConfigure(t *testing.T) {
	prevDefault, prevSlog := Default(), slog.Default()
	t.Cleanup(func() {
		defaultLogger = prevDefault
		slog.SetDefault(prevSlog)
	})

	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFormat(config.LogFormatJSON),
	)

	logger := Configure(cfg, io.Discard)

	if Default() != logger {
		t.Error("Configure() should set the default logger")
	}
	if slog.Default() != logger.Slog() {
		t.Error("Configure() should set the slog default")
	}
}
