package brand

import "github.com/helixml/citetrack/domain/repository"

// BrandStore defines persistence for brands.
type BrandStore interface {
	repository.Store[Brand]
}

// WithPaused filters by the "is_paused" column.
func WithPaused(paused bool) repository.Option {
	return repository.WithCondition("is_paused", paused)
}
