// Package dto holds the JSON shapes of the v1 API.
package dto

import (
	"time"

	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/domain/memo"
)

// MemoResponse is a memo as returned by the API.
type MemoResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Type          string     `json:"memo_type"`
	Status        string     `json:"status"`
	SourceQueryID string     `json:"source_query_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

// NewMemoResponse converts a domain memo.
func NewMemoResponse(m memo.Memo) MemoResponse {
	return MemoResponse{
		ID:            m.ID(),
		Title:         m.Title(),
		Slug:          m.Slug(),
		Type:          string(m.Type()),
		Status:        string(m.Status()),
		SourceQueryID: m.SourceQueryID(),
		CreatedAt:     m.CreatedAt(),
		PublishedAt:   m.PublishedAt(),
	}
}

// ContentMatchesResponse maps each cited URL to the memos that address it.
type ContentMatchesResponse struct {
	WindowDays int                       `json:"window_days"`
	Matches    map[string][]MemoResponse `json:"matches"`
}

// NewContentMatchesResponse converts matcher output.
func NewContentMatchesResponse(windowDays int, matches map[string][]memo.Memo) ContentMatchesResponse {
	out := make(map[string][]MemoResponse, len(matches))
	for url, memos := range matches {
		items := make([]MemoResponse, len(memos))
		for i, m := range memos {
			items[i] = NewMemoResponse(m)
		}
		out[url] = items
	}
	return ContentMatchesResponse{WindowDays: windowDays, Matches: out}
}

// CompetitorResponse is a competitor as returned by the API.
type CompetitorResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	IsActive bool   `json:"is_active"`
}

// CompetitorListResponse lists a brand's competitors.
type CompetitorListResponse struct {
	Competitors []CompetitorResponse `json:"competitors"`
}

// NewCompetitorListResponse converts domain competitors.
func NewCompetitorListResponse(competitors []competitor.Competitor) CompetitorListResponse {
	items := make([]CompetitorResponse, len(competitors))
	for i, c := range competitors {
		items[i] = CompetitorResponse{
			ID:       c.ID(),
			Name:     c.Name(),
			Domain:   c.Domain(),
			IsActive: c.IsActive(),
		}
	}
	return CompetitorListResponse{Competitors: items}
}
