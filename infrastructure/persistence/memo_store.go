package persistence

import (
	"context"
	"time"

	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/internal/database"
)

// MemoStore implements memo.MemoStore using GORM.
type MemoStore struct {
	database.Repository[memo.Memo, MemoModel]
}

// NewMemoStore creates a new MemoStore.
func NewMemoStore(db database.Database) MemoStore {
	return MemoStore{
		Repository: database.NewRepository[memo.Memo, MemoModel](db, MemoMapper{}, "memo"),
	}
}

// LatestCreatedAt returns the newest memo creation time for a brand.
func (s MemoStore) LatestCreatedAt(ctx context.Context, brandID string) (time.Time, error) {
	return latestCreatedAt(s.DB(ctx).Model(&MemoModel{}), brandID)
}
