package analytics

import (
	"fmt"
	"time"

	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/domain/scan"
)

// View selects which prompts a report covers.
type View string

// View values.
const (
	ViewAll       View = "all"
	ViewUnbranded View = "unbranded"
	ViewBranded   View = "branded"
)

// ParseView parses a view name. An empty name is ViewAll.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewUnbranded, ViewBranded:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// FilterByView keeps the scans whose prompt matches the view. Scans whose
// prompt is unknown count as unbranded.
func FilterByView(scans []scan.Scan, prompts []prompt.Prompt, brandName string, view View) []scan.Scan {
	if view == ViewAll || view == "" {
		return scans
	}
	branded := make(map[string]bool, len(prompts))
	for _, p := range prompts {
		branded[p.ID()] = p.IsBranded(brandName)
	}
	want := view == ViewBranded
	out := make([]scan.Scan, 0, len(scans))
	for _, s := range scans {
		if branded[s.QueryID()] == want {
			out = append(out, s)
		}
	}
	return out
}

// Input is everything a report is computed from.
type Input struct {
	BrandName   string
	BrandDomain string
	WindowDays  int
	View        View
	Now         time.Time
	Scans       []scan.Scan
	Prompts     []prompt.Prompt
	Memos       []memo.Memo
}

// Summary is the headline numbers of a report.
type Summary struct {
	TotalScans         int      `json:"total_scans"`
	ScansWithCitations int      `json:"scans_with_citations"`
	MentionRate        int      `json:"mention_rate"`
	CitationRate       int      `json:"citation_rate"`
	SentimentScore     *int     `json:"sentiment_score"`
	AveragePosition    *float64 `json:"average_position"`
	Trend              float64  `json:"trend"`
	BrandURLs          int      `json:"brand_urls"`
}

// Report is the full visibility breakdown for one brand and window.
type Report struct {
	WindowDays  int              `json:"window_days"`
	View        View             `json:"view"`
	GeneratedAt time.Time        `json:"generated_at"`
	Summary     Summary          `json:"summary"`
	URLs        []URLCitation    `json:"urls"`
	Domains     []DomainCitation `json:"domains"`
	Timeline    []DayBucket      `json:"timeline"`
	Funnel      []StageStats     `json:"funnel"`
}

// Build computes a Report. Scans before the window's first day are
// dropped before anything is counted.
func Build(in Input) Report {
	view := in.View
	if view == "" {
		view = ViewAll
	}
	scans := InWindow(in.Scans, in.WindowDays, in.Now)
	scans = FilterByView(scans, in.Prompts, in.BrandName, view)

	urls := CitationsByURL(scans, in.BrandDomain)
	timeline := Timeline(scans, in.WindowDays, in.Now)
	withCitations, _ := citationCounts(scans)

	brandURLs := 0
	for _, u := range urls {
		if u.IsBrand {
			brandURLs++
		}
	}

	return Report{
		WindowDays:  in.WindowDays,
		View:        view,
		GeneratedAt: in.Now.UTC(),
		Summary: Summary{
			TotalScans:         len(scans),
			ScansWithCitations: withCitations,
			MentionRate:        MentionRate(scans),
			CitationRate:       CitationRate(scans),
			SentimentScore:     SentimentScore(scans),
			AveragePosition:    AveragePosition(scans),
			Trend:              Trend(timeline),
			BrandURLs:          brandURLs,
		},
		URLs:     urls,
		Domains:  CitationsByDomain(scans, in.BrandDomain),
		Timeline: timeline,
		Funnel:   FunnelStats(scans, in.Prompts, in.Memos, in.BrandDomain),
	}
}
