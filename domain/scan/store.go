package scan

import (
	"context"
	"time"

	"github.com/helixml/citetrack/domain/repository"
)

// ScanStore reads scans. Scans are append-only, so there is no update.
type ScanStore interface {
	Find(ctx context.Context, options ...repository.Option) ([]Scan, error)
	Count(ctx context.Context, options ...repository.Option) (int64, error)
	Save(ctx context.Context, s Scan) (Scan, error)
	// LatestScannedAt returns the newest scanned_at for a brand, or the zero
	// time when the brand has no scans.
	LatestScannedAt(ctx context.Context, brandID string) (time.Time, error)
}

// WithScannedSince keeps scans at or after t.
func WithScannedSince(t time.Time) repository.Option {
	return repository.WithSince("scanned_at", t)
}

// WithQueryIDIn filters by the "query_id" column.
func WithQueryIDIn(ids []string) repository.Option {
	return repository.WithConditionIn("query_id", ids)
}
