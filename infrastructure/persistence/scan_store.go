package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/scan"
	"github.com/helixml/citetrack/internal/database"
	"gorm.io/gorm"
)

// ScanStore implements scan.ScanStore using GORM.
type ScanStore struct {
	database.Repository[scan.Scan, ScanModel]
}

// NewScanStore creates a new ScanStore.
func NewScanStore(db database.Database) ScanStore {
	return ScanStore{
		Repository: database.NewRepository[scan.Scan, ScanModel](db, ScanMapper{}, "scan"),
	}
}

// LatestScannedAt returns the newest scan time for a brand, or the zero time
// when the brand has never been scanned.
func (s ScanStore) LatestScannedAt(ctx context.Context, brandID string) (time.Time, error) {
	var model ScanModel
	result := database.ApplyOptions(s.DB(ctx).Select("scanned_at"),
		repository.WithBrandID(brandID),
		repository.WithOrderDesc("scanned_at"),
		repository.WithLimit(1),
	).Find(&model)
	if result.Error != nil {
		return time.Time{}, fmt.Errorf("latest scan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return time.Time{}, nil
	}
	return model.ScannedAt.UTC(), nil
}

// latestCreatedAt reads the newest created_at of a brand's rows in the
// table db is scoped to.
func latestCreatedAt(db *gorm.DB, brandID string) (time.Time, error) {
	var row struct {
		CreatedAt time.Time `gorm:"column:created_at"`
	}
	result := database.ApplyOptions(db.Select("created_at"),
		repository.WithBrandID(brandID),
		repository.WithOrderDesc("created_at"),
		repository.WithLimit(1),
	).Find(&row)
	if result.Error != nil {
		return time.Time{}, fmt.Errorf("latest created_at: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return time.Time{}, nil
	}
	return row.CreatedAt.UTC(), nil
}
