package persistence

import (
	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/internal/database"
)

// CompetitorStore implements competitor.CompetitorStore using GORM.
type CompetitorStore struct {
	database.Repository[competitor.Competitor, CompetitorModel]
}

// NewCompetitorStore creates a new CompetitorStore.
func NewCompetitorStore(db database.Database) CompetitorStore {
	return CompetitorStore{
		Repository: database.NewRepository[competitor.Competitor, CompetitorModel](db, CompetitorMapper{}, "competitor"),
	}
}
