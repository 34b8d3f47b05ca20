package memo

import (
	"context"
	"time"

	"github.com/helixml/citetrack/domain/repository"
)

// MemoStore defines persistence for memos.
type MemoStore interface {
	repository.Store[Memo]
	// LatestCreatedAt returns the newest memo creation time for a brand, or
	// the zero time when the brand has no memos.
	LatestCreatedAt(ctx context.Context, brandID string) (time.Time, error)
}

// WithStatus filters by the "status" column.
func WithStatus(status Status) repository.Option {
	return repository.WithCondition("status", string(status))
}

// WithSourceQueryID filters by the "source_query_id" column.
func WithSourceQueryID(id string) repository.Option {
	return repository.WithCondition("source_query_id", id)
}
