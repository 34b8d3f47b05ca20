// Package opportunity classifies prompts by brand visibility against
// competitor visibility.
package opportunity

import (
	"sort"
	"strings"

	"github.com/helixml/citetrack/domain/analytics"
	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/domain/scan"
)

// Status is the classification of one prompt group.
type Status string

// Status values.
const (
	StatusOpportunity Status = "opportunity"
	StatusGap         Status = "gap"
	StatusCovered     Status = "covered"
	StatusStrong      Status = "strong"
	StatusBranded     Status = "branded"
)

// Group is the classification of the scans of one prompt.
type Group struct {
	QueryID          string   `json:"query_id"`
	Text             string   `json:"text"`
	ScanCount        int      `json:"scan_count"`
	Branded          bool     `json:"branded"`
	BrandMentioned   bool     `json:"brand_mentioned"`
	BrandCited       bool     `json:"brand_cited"`
	KnownCompetitors []string `json:"known_competitors"`
	Status           Status   `json:"status"`
}

// IsOpportunity reports whether competitors are visible and the brand is not.
func (g Group) IsOpportunity() bool { return g.Status == StatusOpportunity }

// Summary is the classification of every scanned prompt of a brand.
// Branded prompts appear in Groups but never in EligiblePrompts or any rate.
type Summary struct {
	Groups          []Group        `json:"groups"`
	Counts          map[Status]int `json:"counts"`
	EligiblePrompts int            `json:"eligible_prompts"`
	OpportunityRate int            `json:"opportunity_rate"`
	CoverageRate    int            `json:"coverage_rate"`
}

// Detector classifies prompt groups.
type Detector struct {
	blocklist Blocklist
}

// NewDetector creates a Detector. A nil blocklist uses DefaultBlocklist.
func NewDetector(blocklist Blocklist) Detector {
	if blocklist == nil {
		blocklist = DefaultBlocklist()
	}
	return Detector{blocklist: blocklist}
}

// Classify classifies the scans of a single prompt.
func (d Detector) Classify(b brand.Brand, p prompt.Prompt, scans []scan.Scan, competitors []competitor.Competitor) Group {
	g := Group{
		QueryID:   p.ID(),
		Text:      p.Text(),
		ScanCount: len(scans),
		Branded:   p.IsBranded(b.Name()),
	}

	citedScans := 0
	for _, s := range scans {
		if s.BrandMentioned() {
			g.BrandMentioned = true
		}
		if brandCitedIn(s, b.Domain()) {
			g.BrandCited = true
			citedScans++
		}
	}
	for _, name := range d.KnownCompetitors(scans, competitors) {
		if !strings.EqualFold(name, b.Name()) {
			g.KnownCompetitors = append(g.KnownCompetitors, name)
		}
	}

	visible := g.BrandMentioned || g.BrandCited
	switch {
	case g.Branded:
		g.Status = StatusBranded
	case !visible && len(g.KnownCompetitors) > 0:
		g.Status = StatusOpportunity
	case !visible:
		g.Status = StatusGap
	case len(scans) > 0 && citedScans*2 >= len(scans):
		g.Status = StatusStrong
	default:
		g.Status = StatusCovered
	}
	return g
}

// Detect classifies every prompt that has at least one scan. Groups are
// ordered opportunities first, then by scan count.
func (d Detector) Detect(b brand.Brand, prompts []prompt.Prompt, scans []scan.Scan, competitors []competitor.Competitor) Summary {
	byQuery := make(map[string][]scan.Scan)
	for _, s := range scans {
		byQuery[s.QueryID()] = append(byQuery[s.QueryID()], s)
	}

	summary := Summary{Counts: make(map[Status]int)}
	visible := 0
	for _, p := range prompts {
		group := byQuery[p.ID()]
		if len(group) == 0 {
			continue
		}
		g := d.Classify(b, p, group, competitors)
		summary.Groups = append(summary.Groups, g)
		summary.Counts[g.Status]++
		if g.Branded {
			continue
		}
		summary.EligiblePrompts++
		if g.Status == StatusCovered || g.Status == StatusStrong {
			visible++
		}
	}

	sort.SliceStable(summary.Groups, func(i, j int) bool {
		oi, oj := summary.Groups[i].IsOpportunity(), summary.Groups[j].IsOpportunity()
		if oi != oj {
			return oi
		}
		return summary.Groups[i].ScanCount > summary.Groups[j].ScanCount
	})

	summary.OpportunityRate = analytics.Rate(summary.Counts[StatusOpportunity], summary.EligiblePrompts)
	summary.CoverageRate = analytics.Rate(visible, summary.EligiblePrompts)
	return summary
}

// KnownCompetitors returns the competitor names visible in scans: the owners
// of cited domains among active registered competitors, plus the names the
// answers mentioned. Names are de-duplicated case-insensitively, keep their
// first spelling, and skip blocklisted noise.
func (d Detector) KnownCompetitors(scans []scan.Scan, competitors []competitor.Competitor) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if key == "" || d.blocklist.Blocked(name) {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}

	for _, s := range scans {
		for _, c := range s.Citations() {
			host := analytics.Hostname(c)
			for _, comp := range competitors {
				if comp.IsActive() && analytics.MatchesDomain(host, comp.Domain()) {
					add(comp.Name())
				}
			}
		}
		for _, name := range s.CompetitorsMentioned() {
			add(name)
		}
	}
	return out
}

func brandCitedIn(s scan.Scan, brandDomain string) bool {
	if s.BrandCited() {
		return true
	}
	for _, c := range s.Citations() {
		if analytics.MatchesDomain(analytics.Hostname(c), brandDomain) {
			return true
		}
	}
	return false
}
