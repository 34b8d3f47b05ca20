package analytics

import (
	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/domain/scan"
)

// Classification labels a funnel stage's visibility.
type Classification string

// Classification values. An empty Classification means neither label
// applies.
const (
	ClassificationNone   Classification = ""
	ClassificationGap    Classification = "gap"
	ClassificationStrong Classification = "strong"
)

const topDomainsPerStage = 5

// StageStats is the visibility of one funnel stage.
type StageStats struct {
	Stage           prompt.FunnelStage `json:"stage"`
	ScanCount       int                `json:"scan_count"`
	MentionRate     int                `json:"mention_rate"`
	CitationRate    int                `json:"citation_rate"`
	SentimentScore  *int               `json:"sentiment_score"`
	AveragePosition *float64           `json:"average_position"`
	TopDomains      []DomainCitation   `json:"top_domains"`
	PublishedMemos  int                `json:"published_memos"`
	DraftMemos      int                `json:"draft_memos"`
	Classification  Classification     `json:"classification,omitempty"`
}

// Classify labels a stage. A stage with more than five scans, no brand
// citations and a mention rate under 30 is a gap. A stage with a citation
// rate of at least 30 or a mention rate of at least 60 is strong.
func Classify(scanCount, citationRate, mentionRate int) Classification {
	if scanCount > 5 && citationRate == 0 && mentionRate < 30 {
		return ClassificationGap
	}
	if citationRate >= 30 || mentionRate >= 60 {
		return ClassificationStrong
	}
	return ClassificationNone
}

// FunnelStats computes per-stage statistics for the top, mid and bottom
// stages in that order. Prompts without a known stage are left out.
func FunnelStats(scans []scan.Scan, prompts []prompt.Prompt, memos []memo.Memo, brandDomain string) []StageStats {
	stageOf := make(map[string]prompt.FunnelStage, len(prompts))
	for _, p := range prompts {
		if p.FunnelStage().Valid() {
			stageOf[p.ID()] = p.FunnelStage()
		}
	}

	scansByStage := make(map[prompt.FunnelStage][]scan.Scan)
	for _, s := range scans {
		if stage, ok := stageOf[s.QueryID()]; ok {
			scansByStage[stage] = append(scansByStage[stage], s)
		}
	}

	published := make(map[prompt.FunnelStage]int)
	drafts := make(map[prompt.FunnelStage]int)
	for _, m := range memos {
		stage, ok := m.Type().FunnelStage()
		if !ok {
			continue
		}
		if m.IsPublished() {
			published[stage]++
		} else {
			drafts[stage]++
		}
	}

	out := make([]StageStats, 0, len(prompt.Stages()))
	for _, stage := range prompt.Stages() {
		stageScans := scansByStage[stage]
		stats := StageStats{
			Stage:           stage,
			ScanCount:       len(stageScans),
			MentionRate:     MentionRate(stageScans),
			CitationRate:    CitationRate(stageScans),
			SentimentScore:  SentimentScore(stageScans),
			AveragePosition: AveragePosition(stageScans),
			TopDomains:      TopDomains(stageScans, brandDomain, topDomainsPerStage),
			PublishedMemos:  published[stage],
			DraftMemos:      drafts[stage],
		}
		stats.Classification = Classify(stats.ScanCount, stats.CitationRate, stats.MentionRate)
		out = append(out, stats)
	}
	return out
}
