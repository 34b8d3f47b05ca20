// Package feed provides content feeds and the external posts synced from them.
package feed

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helixml/citetrack/domain/repository"
)

// Feed is an RSS or Atom source of brand-owned posts.
type Feed struct {
	id        string
	brandID   string
	url       string
	active    bool
	createdAt time.Time
}

// NewFeed creates an active feed.
func NewFeed(brandID, url string) Feed {
	return Feed{
		id:        uuid.NewString(),
		brandID:   brandID,
		url:       strings.TrimSpace(url),
		active:    true,
		createdAt: time.Now().UTC(),
	}
}

// ReconstructFeed recreates a Feed from persistence.
func ReconstructFeed(id, brandID, url string, active bool, createdAt time.Time) Feed {
	return Feed{id: id, brandID: brandID, url: url, active: active, createdAt: createdAt}
}

// ID returns the feed identifier.
func (f Feed) ID() string { return f.id }

// BrandID returns the owning brand.
func (f Feed) BrandID() string { return f.brandID }

// URL returns the feed URL.
func (f Feed) URL() string { return f.url }

// IsActive reports whether the feed is polled.
func (f Feed) IsActive() bool { return f.active }

// CreatedAt returns the creation timestamp.
func (f Feed) CreatedAt() time.Time { return f.createdAt }

// SameURL reports whether two feed URLs point at the same feed.
func SameURL(a, b string) bool {
	norm := func(s string) string {
		return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "/")
	}
	return norm(a) == norm(b)
}

// SyncStatus is the state of an external post's last sync.
type SyncStatus string

// SyncStatus values.
const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// Post is an item discovered in a feed and mirrored into the store.
type Post struct {
	id         string
	brandID    string
	feedID     string
	externalID string
	title      string
	url        string
	status     SyncStatus
	syncedAt   *time.Time
}

// ReconstructPost recreates a Post from persistence.
func ReconstructPost(
	id, brandID, feedID, externalID, title, url string,
	status SyncStatus,
	syncedAt *time.Time,
) Post {
	return Post{
		id:         id,
		brandID:    brandID,
		feedID:     feedID,
		externalID: externalID,
		title:      title,
		url:        url,
		status:     status,
		syncedAt:   syncedAt,
	}
}

// NewPost creates a pending post for a feed item.
func NewPost(brandID, feedID, externalID, title, url string) Post {
	return Post{
		id:         uuid.NewString(),
		brandID:    brandID,
		feedID:     feedID,
		externalID: externalID,
		title:      title,
		url:        url,
		status:     SyncPending,
	}
}

// ID returns the post identifier.
func (p Post) ID() string { return p.id }

// BrandID returns the owning brand.
func (p Post) BrandID() string { return p.brandID }

// FeedID returns the source feed.
func (p Post) FeedID() string { return p.feedID }

// ExternalID returns the identifier in the source system.
func (p Post) ExternalID() string { return p.externalID }

// Title returns the post title.
func (p Post) Title() string { return p.title }

// URL returns the post URL.
func (p Post) URL() string { return p.url }

// Status returns the sync state.
func (p Post) Status() SyncStatus { return p.status }

// SyncedAt returns the last successful sync time.
func (p Post) SyncedAt() *time.Time { return p.syncedAt }

// WithStatus returns a copy with the sync state changed.
func (p Post) WithStatus(status SyncStatus) Post {
	p.status = status
	if status == SyncSynced {
		now := time.Now().UTC()
		p.syncedAt = &now
	}
	return p
}

// FeedStore defines persistence for feeds.
type FeedStore interface {
	repository.Store[Feed]
}

// PostStore defines persistence for external posts.
type PostStore interface {
	repository.Store[Post]
}

// WithSyncStatus filters by the "sync_status" column.
func WithSyncStatus(status SyncStatus) repository.Option {
	return repository.WithCondition("sync_status", string(status))
}

// WithFeedID filters by the "feed_id" column.
func WithFeedID(id string) repository.Option {
	return repository.WithCondition("feed_id", id)
}
