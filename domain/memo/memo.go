// Package memo provides brand-authored content assets.
package memo

import (
	"time"

	"github.com/google/uuid"

	"github.com/helixml/citetrack/domain/prompt"
)

// Type is the kind of content a memo is.
type Type string

// Type values.
const (
	TypeComparison  Type = "comparison"
	TypeAlternative Type = "alternative"
	TypeIndustry    Type = "industry"
	TypeHowTo       Type = "how_to"
	TypeResponse    Type = "response"
	TypeGuide       Type = "guide"
	TypeGapFill     Type = "gap_fill"
)

var stageByType = map[Type]prompt.FunnelStage{
	TypeComparison:  prompt.StageMid,
	TypeAlternative: prompt.StageBottom,
	TypeIndustry:    prompt.StageTop,
	TypeHowTo:       prompt.StageTop,
	TypeResponse:    prompt.StageMid,
	TypeGuide:       prompt.StageTop,
	TypeGapFill:     prompt.StageMid,
}

// FunnelStage returns the stage a memo type serves. Unknown types serve
// no stage.
func (t Type) FunnelStage() (prompt.FunnelStage, bool) {
	s, ok := stageByType[t]
	return s, ok
}

// Valid reports whether t is a known memo type.
func (t Type) Valid() bool {
	_, ok := stageByType[t]
	return ok
}

// Status is the publication state of a memo.
type Status string

// Status values.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Memo is a content asset meant to be cited by AI models. Its body is
// produced by the external generation workflow.
type Memo struct {
	id            string
	brandID       string
	title         string
	slug          string
	memoType      Type
	status        Status
	sourceQueryID string
	createdAt     time.Time
	publishedAt   *time.Time
}

// NewMemo creates a draft memo.
func NewMemo(brandID, title, slug string, memoType Type, sourceQueryID string) Memo {
	return Memo{
		id:            uuid.NewString(),
		brandID:       brandID,
		title:         title,
		slug:          slug,
		memoType:      memoType,
		status:        StatusDraft,
		sourceQueryID: sourceQueryID,
		createdAt:     time.Now().UTC(),
	}
}

// ReconstructMemo recreates a Memo from persistence.
func ReconstructMemo(
	id, brandID, title, slug string,
	memoType Type,
	status Status,
	sourceQueryID string,
	createdAt time.Time,
	publishedAt *time.Time,
) Memo {
	return Memo{
		id:            id,
		brandID:       brandID,
		title:         title,
		slug:          slug,
		memoType:      memoType,
		status:        status,
		sourceQueryID: sourceQueryID,
		createdAt:     createdAt,
		publishedAt:   publishedAt,
	}
}

// ID returns the memo identifier.
func (m Memo) ID() string { return m.id }

// BrandID returns the owning brand.
func (m Memo) BrandID() string { return m.brandID }

// Title returns the memo title.
func (m Memo) Title() string { return m.title }

// Slug returns the URL slug.
func (m Memo) Slug() string { return m.slug }

// Type returns the memo type.
func (m Memo) Type() Type { return m.memoType }

// Status returns the publication state.
func (m Memo) Status() Status { return m.status }

// IsPublished reports whether the memo is live.
func (m Memo) IsPublished() bool { return m.status == StatusPublished }

// SourceQueryID returns the prompt that prompted this memo, or "".
func (m Memo) SourceQueryID() string { return m.sourceQueryID }

// CreatedAt returns the creation timestamp.
func (m Memo) CreatedAt() time.Time { return m.createdAt }

// PublishedAt returns the publication time, nil for unpublished memos.
func (m Memo) PublishedAt() *time.Time { return m.publishedAt }
