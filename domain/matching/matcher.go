// Package matching links cited URLs to brand-owned memos.
package matching

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/helixml/citetrack/domain/analytics"
	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/scan"
)

// Input is the data strategies match against.
type Input struct {
	Scans []scan.Scan
	Memos []memo.Memo
}

// Strategy finds the memos related to one cited URL.
type Strategy interface {
	Name() string
	Match(url string, in Input) []memo.Memo
}

// ExactLink relates a URL to memos created from the prompts whose scans
// cited that URL.
type ExactLink struct{}

// Name returns "exact_link".
func (ExactLink) Name() string { return "exact_link" }

// Match returns memos whose source query cited u, deduplicated by memo id
// and in memo input order.
func (ExactLink) Match(u string, in Input) []memo.Memo {
	queries := make(map[string]struct{})
	for _, s := range in.Scans {
		for _, c := range s.Citations() {
			if c == u {
				queries[s.QueryID()] = struct{}{}
				break
			}
		}
	}
	if len(queries) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []memo.Memo
	for _, m := range in.Memos {
		if m.SourceQueryID() == "" {
			continue
		}
		if _, ok := queries[m.SourceQueryID()]; !ok {
			continue
		}
		if _, dup := seen[m.ID()]; dup {
			continue
		}
		seen[m.ID()] = struct{}{}
		out = append(out, m)
	}
	return out
}

// LexicalToken relates a URL to memos whose title or slug contains a word
// from the URL path.
type LexicalToken struct{}

// Name returns "lexical_token".
func (LexicalToken) Name() string { return "lexical_token" }

// Match returns memos whose lower-cased title or slug contains any path
// token longer than three characters.
func (LexicalToken) Match(u string, in Input) []memo.Memo {
	tokens := PathTokens(u)
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []memo.Memo
	for _, m := range in.Memos {
		title := strings.ToLower(m.Title())
		slug := strings.ToLower(m.Slug())
		for _, tok := range tokens {
			if strings.Contains(title, tok) || strings.Contains(slug, tok) {
				if _, dup := seen[m.ID()]; !dup {
					seen[m.ID()] = struct{}{}
					out = append(out, m)
				}
				break
			}
		}
	}
	return out
}

// PathTokens splits a URL path into lower-cased alphanumeric words longer
// than three characters.
func PathTokens(raw string) []string {
	path := raw
	s := raw
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	if u, err := url.Parse(s); err == nil {
		path = u.Path
	}

	words := strings.FieldsFunc(strings.ToLower(path), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) > 3 {
			out = append(out, w)
		}
	}
	return out
}

// Matcher tries strategies in order and keeps the first non-empty result.
type Matcher struct {
	strategies []Strategy
}

// NewMatcher creates a Matcher. With no strategies it uses ExactLink then
// LexicalToken.
func NewMatcher(strategies ...Strategy) Matcher {
	if len(strategies) == 0 {
		strategies = []Strategy{ExactLink{}, LexicalToken{}}
	}
	return Matcher{strategies: strategies}
}

// Match returns the memos related to u, or an empty slice.
func (m Matcher) Match(u string, in Input) []memo.Memo {
	for _, s := range m.strategies {
		if found := s.Match(u, in); len(found) > 0 {
			return found
		}
	}
	return []memo.Memo{}
}

// MatchAll maps every cited URL that does not belong to the brand to its
// related memos.
func (m Matcher) MatchAll(in Input, brandDomain string) map[string][]memo.Memo {
	out := make(map[string][]memo.Memo)
	for _, c := range analytics.CitationsByURL(in.Scans, brandDomain) {
		if c.IsBrand {
			continue
		}
		out[c.URL] = m.Match(c.URL, in)
	}
	return out
}
