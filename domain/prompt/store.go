package prompt

import (
	"context"
	"time"

	"github.com/helixml/citetrack/domain/repository"
)

// PromptStore defines persistence for prompts.
type PromptStore interface {
	repository.Store[Prompt]
	// LatestCreatedAt returns the newest prompt creation time for a brand,
	// or the zero time when the brand has no prompts.
	LatestCreatedAt(ctx context.Context, brandID string) (time.Time, error)
}

// WithFunnelStage filters by the "funnel_stage" column.
func WithFunnelStage(stage FunnelStage) repository.Option {
	return repository.WithCondition("funnel_stage", string(stage))
}
