package persistence

import (
	"context"
	"time"

	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/internal/database"
)

// PromptStore implements prompt.PromptStore using GORM.
type PromptStore struct {
	database.Repository[prompt.Prompt, PromptModel]
}

// NewPromptStore creates a new PromptStore.
func NewPromptStore(db database.Database) PromptStore {
	return PromptStore{
		Repository: database.NewRepository[prompt.Prompt, PromptModel](db, PromptMapper{}, "prompt"),
	}
}

// LatestCreatedAt returns the newest prompt creation time for a brand.
func (s PromptStore) LatestCreatedAt(ctx context.Context, brandID string) (time.Time, error) {
	return latestCreatedAt(s.DB(ctx).Model(&PromptModel{}), brandID)
}
