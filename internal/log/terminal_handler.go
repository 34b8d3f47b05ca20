package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// palette holds the escape sequences for one output mode. The zero palette
// writes plain text.
type palette struct {
	reset, dim, bold             string
	debug, info, warn, errorLvl string
}

var ansiPalette = palette{
	reset:    "\033[0m",
	dim:      "\033[2m",
	bold:     "\033[1m",
	debug:    "\033[36m",
	info:     "\033[32m",
	warn:     "\033[33m",
	errorLvl: "\033[31m",
}

// TerminalHandler formats log records as human-readable lines.
//
// Output format:
//
//	15:04:05.000 INF relay delivered event name=scan.run brand_id=…
//
// Colour is dropped when NO_COLOR is set.
type TerminalHandler struct {
	writer io.Writer
	level  slog.Leveler
	colors palette
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *TerminalHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	colors := ansiPalette
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		colors = palette{}
	}
	return &TerminalHandler{
		writer: w,
		level:  level,
		colors: colors,
		mu:     &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats a log record and writes it as one line.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.Grow(256)

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	h.styled(&buf, h.colors.dim, ts.Format("15:04:05.000"))
	buf.WriteByte(' ')

	color, label := h.levelStyle(r.Level)
	h.styled(&buf, color, label)
	buf.WriteByte(' ')
	h.styled(&buf, h.colors.bold, r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&buf, a, h.groups)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, a, h.groups)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new handler whose attributes consist of both the
// existing attributes and attrs.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...), attrs...)
	return &next
}

// WithGroup returns a new handler with the given group name prepended to
// subsequent attribute keys.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append(make([]string, 0, len(h.groups)+1), h.groups...), name)
	return &next
}

func (h *TerminalHandler) styled(buf *bytes.Buffer, style, text string) {
	buf.WriteString(style)
	buf.WriteString(text)
	buf.WriteString(h.colors.reset)
}

func (h *TerminalHandler) levelStyle(level slog.Level) (string, string) {
	switch {
	case level < slog.LevelInfo:
		return h.colors.debug, "DBG"
	case level < slog.LevelWarn:
		return h.colors.info, "INF"
	case level < slog.LevelError:
		return h.colors.warn, "WRN"
	default:
		return h.colors.errorLvl, "ERR"
	}
}

func (h *TerminalHandler) appendAttr(buf *bytes.Buffer, a slog.Attr, groups []string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		prefix := groups
		if a.Key != "" {
			prefix = append(append(make([]string, 0, len(groups)+1), groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(buf, ga, prefix)
		}
		return
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	buf.WriteByte(' ')
	h.styled(buf, h.colors.dim, key+"=")
	buf.WriteString(formatAttrValue(a.Value))
}

func formatAttrValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"\\=") {
			return fmt.Sprintf("%q", s)
		}
		return s
	}
	return v.String()
}
