package persistence

import (
	"time"

	"github.com/helixml/citetrack/domain/brand"
)

// BrandModel represents a tracked brand in the database.
type BrandModel struct {
	ID        string        `gorm:"column:id;primaryKey;size:36"`
	TenantID  string        `gorm:"column:tenant_id;index;not null"`
	Name      string        `gorm:"column:name;not null"`
	Domain    string        `gorm:"column:domain"`
	IsPaused  bool          `gorm:"column:is_paused;not null"`
	Context   brand.Context `gorm:"column:context;serializer:json"`
	CreatedAt time.Time     `gorm:"column:created_at"`
	UpdatedAt time.Time     `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (BrandModel) TableName() string { return "brands" }

// PromptModel represents a tracked prompt (query).
type PromptModel struct {
	ID             string    `gorm:"column:id;primaryKey;size:36"`
	BrandID        string    `gorm:"column:brand_id;index;not null"`
	Text           string    `gorm:"column:text;not null"`
	Type           string    `gorm:"column:type"`
	Persona        string    `gorm:"column:persona"`
	FunnelStage    string    `gorm:"column:funnel_stage;index"`
	Priority       int       `gorm:"column:priority"`
	CurrentStatus  string    `gorm:"column:current_status;not null"`
	CitationStreak int       `gorm:"column:citation_streak"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (PromptModel) TableName() string { return "queries" }

// ScanModel represents one model answer to one prompt.
type ScanModel struct {
	ID                   string    `gorm:"column:id;primaryKey;size:36"`
	BrandID              string    `gorm:"column:brand_id;index:idx_scans_brand_time;not null"`
	QueryID              string    `gorm:"column:query_id;index;not null"`
	Model                string    `gorm:"column:model"`
	BrandMentioned       bool      `gorm:"column:brand_mentioned"`
	BrandPosition        *int      `gorm:"column:brand_position"`
	BrandInCitations     *bool     `gorm:"column:brand_in_citations"`
	BrandSentiment       string    `gorm:"column:brand_sentiment"`
	Citations            []string  `gorm:"column:citations;serializer:json"`
	CompetitorsMentioned []string  `gorm:"column:competitors_mentioned;serializer:json"`
	ScannedAt            time.Time `gorm:"column:scanned_at;index:idx_scans_brand_time"`
}

// TableName returns the table name.
func (ScanModel) TableName() string { return "scans" }

// MemoModel represents a brand-authored content asset.
type MemoModel struct {
	ID            string     `gorm:"column:id;primaryKey;size:36"`
	BrandID       string     `gorm:"column:brand_id;index;not null"`
	Title         string     `gorm:"column:title"`
	Slug          string     `gorm:"column:slug"`
	MemoType      string     `gorm:"column:memo_type"`
	Status        string     `gorm:"column:status"`
	SourceQueryID *string    `gorm:"column:source_query_id;index"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
}

// TableName returns the table name.
func (MemoModel) TableName() string { return "memos" }

// CompetitorModel represents a tracked competitor.
type CompetitorModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	BrandID   string    `gorm:"column:brand_id;index;not null"`
	Name      string    `gorm:"column:name;not null"`
	Domain    string    `gorm:"column:domain"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (CompetitorModel) TableName() string { return "competitors" }

// FeedModel represents a content feed.
type FeedModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	BrandID   string    `gorm:"column:brand_id;uniqueIndex:idx_feeds_brand_url;not null"`
	URL       string    `gorm:"column:url;uniqueIndex:idx_feeds_brand_url;not null"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (FeedModel) TableName() string { return "feeds" }

// PostModel represents an external post mirrored from a feed.
type PostModel struct {
	ID         string     `gorm:"column:id;primaryKey;size:36"`
	BrandID    string     `gorm:"column:brand_id;index;not null"`
	FeedID     string     `gorm:"column:feed_id;index"`
	ExternalID string     `gorm:"column:external_id"`
	Title      string     `gorm:"column:title"`
	URL        string     `gorm:"column:url"`
	SyncStatus string     `gorm:"column:sync_status;index"`
	SyncedAt   *time.Time `gorm:"column:synced_at"`
}

// TableName returns the table name.
func (PostModel) TableName() string { return "external_posts" }

// EventModel represents an undelivered workflow event in the outbox.
type EventModel struct {
	ID        string         `gorm:"column:id;primaryKey;size:36"`
	Name      string         `gorm:"column:name;index;not null"`
	DedupKey  string         `gorm:"column:dedup_key;uniqueIndex;not null"`
	Payload   map[string]any `gorm:"column:payload;serializer:json"`
	Status    string         `gorm:"column:status;index;not null"`
	Attempts  int            `gorm:"column:attempts"`
	LastError string         `gorm:"column:last_error"`
	CreatedAt time.Time      `gorm:"column:created_at;index"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (EventModel) TableName() string { return "workflow_outbox" }
