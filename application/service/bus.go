package service

import (
	"context"
	"log/slog"

	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/internal/domain"
)

// Bus hands events to the asynchronous workflow runner. Send returns once
// the event is accepted; delivery is at-least-once.
type Bus interface {
	Send(ctx context.Context, e workflow.Event) error
}

// UnitOfWork runs fn so that every store call made with the context it
// receives commits or rolls back together.
type UnitOfWork interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Outbox is a Bus that persists events for the Relay to deliver. Inside a
// UnitOfWork the event row commits with the caller's mutations.
type Outbox struct {
	store  workflow.EventStore
	logger *slog.Logger
}

// NewOutbox creates a new outbox.
func NewOutbox(store workflow.EventStore, logger *slog.Logger) *Outbox {
	return &Outbox{
		store:  store,
		logger: logger,
	}
}

// Send persists the event. An undelivered event with the same dedup key is
// reset to pending instead of duplicated.
func (o *Outbox) Send(ctx context.Context, e workflow.Event) error {
	if _, err := o.store.Save(ctx, e); err != nil {
		return domain.Upstream("enqueue event", err)
	}

	o.logger.Debug("event enqueued",
		slog.String("dedup_key", e.DedupKey()),
		slog.String("event", e.Name().String()),
	)
	return nil
}

// Pending returns undelivered events, oldest first.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]workflow.Event, error) {
	options := []repository.Option{
		workflow.WithStatus(workflow.StatusPending),
		repository.WithOrderAsc("created_at"),
	}
	if limit > 0 {
		options = append(options, repository.WithLimit(limit))
	}
	return o.store.Find(ctx, options...)
}

// Failed returns events that exhausted their delivery attempts.
func (o *Outbox) Failed(ctx context.Context) ([]workflow.Event, error) {
	return o.store.Find(ctx, workflow.WithStatus(workflow.StatusFailed), repository.WithOrderAsc("created_at"))
}

// Count returns the number of pending events.
func (o *Outbox) Count(ctx context.Context) (int64, error) {
	return o.store.Count(ctx, workflow.WithStatus(workflow.StatusPending))
}
