package analytics

import (
	"math"

	"github.com/helixml/citetrack/domain/scan"
)

// Rate returns num/den as a rounded integer percent in [0, 100].
// A zero denominator yields 0.
func Rate(num, den int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	r := int(math.Round(100 * float64(num) / float64(den)))
	return min(r, 100)
}

// MentionRate is the percent of scans whose answer named the brand.
func MentionRate(scans []scan.Scan) int {
	mentioned := 0
	for _, s := range scans {
		if s.BrandMentioned() {
			mentioned++
		}
	}
	return Rate(mentioned, len(scans))
}

// CitationRate is the percent of citing scans that cited the brand.
func CitationRate(scans []scan.Scan) int {
	withCitations, cited := citationCounts(scans)
	return Rate(cited, withCitations)
}

// citationCounts counts scans with at least one citation, and among those
// the scans whose brand_in_citations flag is true.
func citationCounts(scans []scan.Scan) (withCitations, brandCited int) {
	for _, s := range scans {
		if !s.HasCitations() {
			continue
		}
		withCitations++
		if s.BrandCited() {
			brandCited++
		}
	}
	return withCitations, brandCited
}

// SentimentScore is round(100*(positive-negative)/(positive+negative+neutral))
// over scans that mention the brand. It is nil when no mention carries a
// sentiment.
func SentimentScore(scans []scan.Scan) *int {
	var positive, negative, neutral int
	for _, s := range scans {
		if !s.BrandMentioned() {
			continue
		}
		switch s.Sentiment() {
		case scan.SentimentPositive:
			positive++
		case scan.SentimentNegative:
			negative++
		case scan.SentimentNeutral:
			neutral++
		}
	}
	total := positive + negative + neutral
	if total == 0 {
		return nil
	}
	score := int(math.Round(100 * float64(positive-negative) / float64(total)))
	return &score
}

// AveragePosition is the mean positive brand position, rounded to one
// decimal. It is nil when no scan has a positive position.
func AveragePosition(scans []scan.Scan) *float64 {
	var sum, n int
	for _, s := range scans {
		if pos, ok := s.BrandPosition(); ok && pos > 0 {
			sum += pos
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(float64(sum)/float64(n)*10) / 10
	return &avg
}
