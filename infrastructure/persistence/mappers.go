package persistence

import (
	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/domain/feed"
	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/domain/scan"
	"github.com/helixml/citetrack/domain/workflow"
)

// BrandMapper maps between brand.Brand and BrandModel.
type BrandMapper struct{}

// ToDomain converts a BrandModel to a domain Brand.
func (BrandMapper) ToDomain(e BrandModel) brand.Brand {
	return brand.ReconstructBrand(e.ID, e.TenantID, e.Name, e.Domain, e.IsPaused, e.Context, e.CreatedAt, e.UpdatedAt)
}

// ToModel converts a domain Brand to a BrandModel.
func (BrandMapper) ToModel(b brand.Brand) BrandModel {
	return BrandModel{
		ID:        b.ID(),
		TenantID:  b.TenantID(),
		Name:      b.Name(),
		Domain:    b.Domain(),
		IsPaused:  b.IsPaused(),
		Context:   b.Context(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

// PromptMapper maps between prompt.Prompt and PromptModel.
type PromptMapper struct{}

// ToDomain converts a PromptModel to a domain Prompt.
func (PromptMapper) ToDomain(e PromptModel) prompt.Prompt {
	return prompt.ReconstructPrompt(
		e.ID, e.BrandID, e.Text, e.Type, e.Persona,
		prompt.FunnelStage(e.FunnelStage),
		e.Priority,
		prompt.Status(e.CurrentStatus),
		e.CitationStreak,
		e.CreatedAt,
	)
}

// ToModel converts a domain Prompt to a PromptModel.
func (PromptMapper) ToModel(p prompt.Prompt) PromptModel {
	return PromptModel{
		ID:             p.ID(),
		BrandID:        p.BrandID(),
		Text:           p.Text(),
		Type:           p.Type(),
		Persona:        p.Persona(),
		FunnelStage:    string(p.FunnelStage()),
		Priority:       p.Priority(),
		CurrentStatus:  string(p.Status()),
		CitationStreak: p.CitationStreak(),
		CreatedAt:      p.CreatedAt(),
	}
}

// ScanMapper maps between scan.Scan and ScanModel.
type ScanMapper struct{}

// ToDomain converts a ScanModel to a domain Scan.
func (ScanMapper) ToDomain(e ScanModel) scan.Scan {
	return scan.ReconstructScan(
		e.ID, e.BrandID, e.QueryID, e.Model,
		e.BrandMentioned,
		e.BrandPosition,
		e.BrandInCitations,
		scan.Sentiment(e.BrandSentiment),
		e.Citations,
		e.CompetitorsMentioned,
		e.ScannedAt,
	)
}

// ToModel converts a domain Scan to a ScanModel.
func (ScanMapper) ToModel(s scan.Scan) ScanModel {
	var position *int
	if pos, ok := s.BrandPosition(); ok {
		position = &pos
	}
	return ScanModel{
		ID:                   s.ID(),
		BrandID:              s.BrandID(),
		QueryID:              s.QueryID(),
		Model:                s.Model(),
		BrandMentioned:       s.BrandMentioned(),
		BrandPosition:        position,
		BrandInCitations:     s.BrandInCitations(),
		BrandSentiment:       string(s.Sentiment()),
		Citations:            s.Citations(),
		CompetitorsMentioned: s.CompetitorsMentioned(),
		ScannedAt:            s.ScannedAt(),
	}
}

// MemoMapper maps between memo.Memo and MemoModel.
type MemoMapper struct{}

// ToDomain converts a MemoModel to a domain Memo.
func (MemoMapper) ToDomain(e MemoModel) memo.Memo {
	sourceQueryID := ""
	if e.SourceQueryID != nil {
		sourceQueryID = *e.SourceQueryID
	}
	return memo.ReconstructMemo(
		e.ID, e.BrandID, e.Title, e.Slug,
		memo.Type(e.MemoType),
		memo.Status(e.Status),
		sourceQueryID,
		e.CreatedAt,
		e.PublishedAt,
	)
}

// ToModel converts a domain Memo to a MemoModel.
func (MemoMapper) ToModel(m memo.Memo) MemoModel {
	var sourceQueryID *string
	if id := m.SourceQueryID(); id != "" {
		sourceQueryID = &id
	}
	return MemoModel{
		ID:            m.ID(),
		BrandID:       m.BrandID(),
		Title:         m.Title(),
		Slug:          m.Slug(),
		MemoType:      string(m.Type()),
		Status:        string(m.Status()),
		SourceQueryID: sourceQueryID,
		CreatedAt:     m.CreatedAt(),
		PublishedAt:   m.PublishedAt(),
	}
}

// CompetitorMapper maps between competitor.Competitor and CompetitorModel.
type CompetitorMapper struct{}

// ToDomain converts a CompetitorModel to a domain Competitor.
func (CompetitorMapper) ToDomain(e CompetitorModel) competitor.Competitor {
	return competitor.ReconstructCompetitor(e.ID, e.BrandID, e.Name, e.Domain, e.IsActive, e.CreatedAt)
}

// ToModel converts a domain Competitor to a CompetitorModel.
func (CompetitorMapper) ToModel(c competitor.Competitor) CompetitorModel {
	return CompetitorModel{
		ID:        c.ID(),
		BrandID:   c.BrandID(),
		Name:      c.Name(),
		Domain:    c.Domain(),
		IsActive:  c.IsActive(),
		CreatedAt: c.CreatedAt(),
	}
}

// FeedMapper maps between feed.Feed and FeedModel.
type FeedMapper struct{}

// ToDomain converts a FeedModel to a domain Feed.
func (FeedMapper) ToDomain(e FeedModel) feed.Feed {
	return feed.ReconstructFeed(e.ID, e.BrandID, e.URL, e.IsActive, e.CreatedAt)
}

// ToModel converts a domain Feed to a FeedModel.
func (FeedMapper) ToModel(f feed.Feed) FeedModel {
	return FeedModel{
		ID:        f.ID(),
		BrandID:   f.BrandID(),
		URL:       f.URL(),
		IsActive:  f.IsActive(),
		CreatedAt: f.CreatedAt(),
	}
}

// PostMapper maps between feed.Post and PostModel.
type PostMapper struct{}

// ToDomain converts a PostModel to a domain Post.
func (PostMapper) ToDomain(e PostModel) feed.Post {
	return feed.ReconstructPost(e.ID, e.BrandID, e.FeedID, e.ExternalID, e.Title, e.URL, feed.SyncStatus(e.SyncStatus), e.SyncedAt)
}

// ToModel converts a domain Post to a PostModel.
func (PostMapper) ToModel(p feed.Post) PostModel {
	return PostModel{
		ID:         p.ID(),
		BrandID:    p.BrandID(),
		FeedID:     p.FeedID(),
		ExternalID: p.ExternalID(),
		Title:      p.Title(),
		URL:        p.URL(),
		SyncStatus: string(p.Status()),
		SyncedAt:   p.SyncedAt(),
	}
}

// EventMapper maps between workflow.Event and EventModel.
type EventMapper struct{}

// ToDomain converts an EventModel to a domain Event.
func (EventMapper) ToDomain(e EventModel) workflow.Event {
	return workflow.ReconstructEvent(
		e.ID,
		workflow.Name(e.Name),
		e.Payload,
		e.DedupKey,
		workflow.Status(e.Status),
		e.Attempts,
		e.LastError,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Event to an EventModel.
func (EventMapper) ToModel(ev workflow.Event) EventModel {
	return EventModel{
		ID:        ev.ID(),
		Name:      ev.Name().String(),
		DedupKey:  ev.DedupKey(),
		Payload:   ev.Payload(),
		Status:    string(ev.Status()),
		Attempts:  ev.Attempts(),
		LastError: ev.LastError(),
		CreatedAt: ev.CreatedAt(),
		UpdatedAt: ev.UpdatedAt(),
	}
}
