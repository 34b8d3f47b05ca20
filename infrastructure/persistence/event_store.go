package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventStore implements workflow.EventStore using GORM.
type EventStore struct {
	database.Repository[workflow.Event, EventModel]
}

// NewEventStore creates a new EventStore.
func NewEventStore(db database.Database) EventStore {
	return EventStore{
		Repository: database.NewRepository[workflow.Event, EventModel](db, EventMapper{}, "event"),
	}
}

// Save inserts an event. An existing row with the same dedup_key is reset to
// pending with its attempts cleared.
func (s EventStore) Save(ctx context.Context, e workflow.Event) (workflow.Event, error) {
	model := s.Mapper().ToModel(e)

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "attempts", "last_error", "payload", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return workflow.Event{}, fmt.Errorf("save event: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Next returns the pending event with the fewest attempts, oldest first.
func (s EventStore) Next(ctx context.Context) (workflow.Event, bool, error) {
	var model EventModel
	db := database.ApplyOptions(s.DB(ctx),
		workflow.WithStatus(workflow.StatusPending),
		repository.WithOrderAsc("attempts"),
		repository.WithOrderAsc("created_at"),
	)
	result := db.First(&model)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return workflow.Event{}, false, nil
	}
	if result.Error != nil {
		return workflow.Event{}, false, fmt.Errorf("next event: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), true, nil
}

// Update persists delivery bookkeeping.
func (s EventStore) Update(ctx context.Context, e workflow.Event) error {
	model := s.Mapper().ToModel(e)
	result := s.DB(ctx).Model(&EventModel{}).Where("id = ?", model.ID).Updates(map[string]any{
		"status":     model.Status,
		"attempts":   model.Attempts,
		"last_error": model.LastError,
		"updated_at": model.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update event: %w", result.Error)
	}
	return nil
}
