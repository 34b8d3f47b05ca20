// Package brand provides the tracked brand aggregate and its persona profile.
package brand

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Brand is a tenant-owned subject of visibility tracking.
// Paused brands receive no scheduled workflow triggers.
type Brand struct {
	id        string
	tenantID  string
	name      string
	domain    string
	paused    bool
	profile   Context
	createdAt time.Time
	updatedAt time.Time
}

// NewBrand creates a new Brand with a generated identifier.
func NewBrand(tenantID, name, domain string) Brand {
	now := time.Now().UTC()
	return Brand{
		id:        uuid.NewString(),
		tenantID:  tenantID,
		name:      strings.TrimSpace(name),
		domain:    strings.TrimSpace(domain),
		profile:   NewContext(),
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructBrand recreates a Brand from persistence.
func ReconstructBrand(
	id, tenantID, name, domain string,
	paused bool,
	profile Context,
	createdAt, updatedAt time.Time,
) Brand {
	return Brand{
		id:        id,
		tenantID:  tenantID,
		name:      name,
		domain:    domain,
		paused:    paused,
		profile:   profile,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the brand identifier.
func (b Brand) ID() string { return b.id }

// TenantID returns the owning tenant.
func (b Brand) TenantID() string { return b.tenantID }

// Name returns the brand name.
func (b Brand) Name() string { return b.name }

// Domain returns the registered web domain.
func (b Brand) Domain() string { return b.domain }

// IsPaused reports whether scheduled work is suspended.
func (b Brand) IsPaused() bool { return b.paused }

// Context returns the structured brand profile.
func (b Brand) Context() Context { return b.profile }

// CreatedAt returns the creation timestamp.
func (b Brand) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last update timestamp.
func (b Brand) UpdatedAt() time.Time { return b.updatedAt }

// OwnedBy reports whether the brand belongs to tenantID.
func (b Brand) OwnedBy(tenantID string) bool {
	return tenantID != "" && b.tenantID == tenantID
}

// WithPaused returns a copy with only the pause flag changed.
func (b Brand) WithPaused(paused bool) Brand {
	b.paused = paused
	b.updatedAt = time.Now().UTC()
	return b
}

// WithContext returns a copy with the profile replaced.
func (b Brand) WithContext(profile Context) Brand {
	b.profile = profile
	b.updatedAt = time.Now().UTC()
	return b
}
