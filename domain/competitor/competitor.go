// Package competitor provides tracked rival entities.
package competitor

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helixml/citetrack/domain/repository"
)

// Competitor is a rival whose visibility is compared with the brand's.
type Competitor struct {
	id        string
	brandID   string
	name      string
	domain    string
	active    bool
	createdAt time.Time
}

// NewCompetitor creates an active competitor.
func NewCompetitor(brandID, name, domain string) Competitor {
	return Competitor{
		id:        uuid.NewString(),
		brandID:   brandID,
		name:      strings.TrimSpace(name),
		domain:    strings.ToLower(strings.TrimSpace(domain)),
		active:    true,
		createdAt: time.Now().UTC(),
	}
}

// ReconstructCompetitor recreates a Competitor from persistence.
func ReconstructCompetitor(id, brandID, name, domain string, active bool, createdAt time.Time) Competitor {
	return Competitor{
		id:        id,
		brandID:   brandID,
		name:      name,
		domain:    domain,
		active:    active,
		createdAt: createdAt,
	}
}

// ID returns the competitor identifier.
func (c Competitor) ID() string { return c.id }

// BrandID returns the brand tracking this competitor.
func (c Competitor) BrandID() string { return c.brandID }

// Name returns the competitor name.
func (c Competitor) Name() string { return c.name }

// Domain returns the competitor's web domain, possibly empty.
func (c Competitor) Domain() string { return c.domain }

// IsActive reports whether the competitor is tracked.
func (c Competitor) IsActive() bool { return c.active }

// CreatedAt returns the creation timestamp.
func (c Competitor) CreatedAt() time.Time { return c.createdAt }

// Deactivate returns a copy that is no longer tracked.
func (c Competitor) Deactivate() Competitor {
	c.active = false
	return c
}

// Activate returns a copy that is tracked again.
func (c Competitor) Activate() Competitor {
	c.active = true
	return c
}

// CompetitorStore defines persistence for competitors.
type CompetitorStore interface {
	repository.Store[Competitor]
}

// WithActive filters by the "is_active" column.
func WithActive(active bool) repository.Option {
	return repository.WithCondition("is_active", active)
}
