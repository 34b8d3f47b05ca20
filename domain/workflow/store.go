package workflow

import (
	"context"

	"github.com/helixml/citetrack/domain/repository"
)

// EventStore persists the outbox of undelivered events.
type EventStore interface {
	// Save inserts the event. A pending or failed event with the same dedup
	// key is reset to pending instead of duplicated.
	Save(ctx context.Context, e Event) (Event, error)
	// Next returns the pending event with the fewest attempts, oldest
	// first. A retried event therefore queues behind fresh ones.
	Next(ctx context.Context) (Event, bool, error)
	// Update persists delivery bookkeeping for an event.
	Update(ctx context.Context, e Event) error
	// Delete removes a delivered event.
	Delete(ctx context.Context, e Event) error
	Find(ctx context.Context, options ...repository.Option) ([]Event, error)
	Count(ctx context.Context, options ...repository.Option) (int64, error)
}

// WithStatus filters by the "status" column.
func WithStatus(status Status) repository.Option {
	return repository.WithCondition("status", string(status))
}

// WithName filters by the "name" column.
func WithName(name Name) repository.Option {
	return repository.WithCondition("name", string(name))
}
