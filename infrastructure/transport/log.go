package transport

import (
	"context"
	"log/slog"

	"github.com/helixml/citetrack/domain/workflow"
)

// Log writes events to a logger instead of a broker. It is the transport
// used when no Redis URL is configured.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log transport.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Publish logs the event and always succeeds.
func (l *Log) Publish(_ context.Context, e workflow.Event) error {
	l.logger.Info("workflow event",
		slog.String("event_id", e.ID()),
		slog.String("event", e.Name().String()),
		slog.String("dedup_key", e.DedupKey()),
		slog.Any("payload", e.Payload()),
	)
	return nil
}
