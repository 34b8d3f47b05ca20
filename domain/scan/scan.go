// Package scan provides the immutable record of one model answering one prompt.
package scan

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentiment is the tone the model used when mentioning the brand.
type Sentiment string

// Sentiment values.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Scan is one model's answer to one prompt at one time. Scans are written
// by the external scan pipeline and never modified here.
type Scan struct {
	id                   string
	brandID              string
	queryID              string
	model                string
	brandMentioned       bool
	brandPosition        *int
	brandInCitations     *bool
	sentiment            Sentiment
	citations            []string
	competitorsMentioned []string
	scannedAt            time.Time
}

// Option configures a new Scan.
type Option func(*Scan)

// WithMention marks the brand as mentioned at position with sentiment.
// A position of zero or less means the position is unknown.
func WithMention(position int, sentiment Sentiment) Option {
	return func(s *Scan) {
		s.brandMentioned = true
		s.sentiment = sentiment
		if position > 0 {
			s.brandPosition = &position
		}
	}
}

// WithCitations sets the cited URLs in citation order.
func WithCitations(urls ...string) Option {
	return func(s *Scan) { s.citations = slices.Clone(urls) }
}

// WithBrandCited records whether the brand appeared among the citations.
func WithBrandCited(cited bool) Option {
	return func(s *Scan) { s.brandInCitations = &cited }
}

// WithCompetitors sets the competitor names the answer mentioned.
func WithCompetitors(names ...string) Option {
	return func(s *Scan) { s.competitorsMentioned = slices.Clone(names) }
}

// NewScan creates a Scan with a generated identifier.
func NewScan(brandID, queryID, model string, scannedAt time.Time, options ...Option) Scan {
	s := Scan{
		id:        uuid.NewString(),
		brandID:   brandID,
		queryID:   queryID,
		model:     model,
		scannedAt: scannedAt.UTC(),
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// ReconstructScan recreates a Scan from persistence.
func ReconstructScan(
	id, brandID, queryID, model string,
	brandMentioned bool,
	brandPosition *int,
	brandInCitations *bool,
	sentiment Sentiment,
	citations, competitorsMentioned []string,
	scannedAt time.Time,
) Scan {
	return Scan{
		id:                   id,
		brandID:              brandID,
		queryID:              queryID,
		model:                model,
		brandMentioned:       brandMentioned,
		brandPosition:        brandPosition,
		brandInCitations:     brandInCitations,
		sentiment:            sentiment,
		citations:            slices.Clone(citations),
		competitorsMentioned: slices.Clone(competitorsMentioned),
		scannedAt:            scannedAt,
	}
}

// ID returns the scan identifier.
func (s Scan) ID() string { return s.id }

// BrandID returns the brand the scan belongs to.
func (s Scan) BrandID() string { return s.brandID }

// QueryID returns the prompt the scan answered.
func (s Scan) QueryID() string { return s.queryID }

// Model returns the answering model name.
func (s Scan) Model() string { return s.model }

// BrandMentioned reports whether the answer named the brand.
func (s Scan) BrandMentioned() bool { return s.brandMentioned }

// BrandPosition returns the brand's rank in the answer, if recorded.
func (s Scan) BrandPosition() (int, bool) {
	if s.brandPosition == nil {
		return 0, false
	}
	return *s.brandPosition, true
}

// BrandInCitations returns the recorded flag, nil when not recorded.
func (s Scan) BrandInCitations() *bool {
	if s.brandInCitations == nil {
		return nil
	}
	v := *s.brandInCitations
	return &v
}

// BrandCited reports whether brand_in_citations is explicitly true.
func (s Scan) BrandCited() bool {
	return s.brandInCitations != nil && *s.brandInCitations
}

// Sentiment returns the brand mention sentiment.
func (s Scan) Sentiment() Sentiment { return s.sentiment }

// Citations returns the non-empty cited URLs in citation order.
func (s Scan) Citations() []string {
	out := make([]string, 0, len(s.citations))
	for _, c := range s.citations {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// HasCitations reports whether the answer cited at least one URL.
func (s Scan) HasCitations() bool {
	return len(s.Citations()) > 0
}

// CompetitorsMentioned returns the competitor names the answer mentioned.
func (s Scan) CompetitorsMentioned() []string {
	return slices.Clone(s.competitorsMentioned)
}

// ScannedAt returns when the scan ran.
func (s Scan) ScannedAt() time.Time { return s.scannedAt }
