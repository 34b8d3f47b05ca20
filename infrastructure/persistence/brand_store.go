package persistence

import (
	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/internal/database"
)

// BrandStore implements brand.BrandStore using GORM.
type BrandStore struct {
	database.Repository[brand.Brand, BrandModel]
}

// NewBrandStore creates a new BrandStore.
func NewBrandStore(db database.Database) BrandStore {
	return BrandStore{
		Repository: database.NewRepository[brand.Brand, BrandModel](db, BrandMapper{}, "brand"),
	}
}
