package analytics

import (
	"sort"

	"github.com/helixml/citetrack/domain/scan"
)

// URLCitation ranks one cited URL.
type URLCitation struct {
	URL            string `json:"url"`
	Domain         string `json:"domain"`
	TotalCitations int    `json:"total_citations"`
	PromptCount    int    `json:"prompt_count"`
	IsBrand        bool   `json:"is_brand"`
}

// DomainCitation ranks one cited hostname.
type DomainCitation struct {
	Domain         string `json:"domain"`
	TotalCitations int    `json:"total_citations"`
	UniqueURLs     int    `json:"unique_urls"`
	PromptCount    int    `json:"prompt_count"`
	IsBrand        bool   `json:"is_brand"`
}

type tally struct {
	total   int
	prompts map[string]struct{}
	urls    map[string]struct{}
}

func newTally() *tally {
	return &tally{prompts: map[string]struct{}{}, urls: map[string]struct{}{}}
}

// groupCitations tallies every (scan, citation) pair under keyOf(url),
// returning keys in first-encounter order.
func groupCitations(scans []scan.Scan, keyOf func(string) string) ([]string, map[string]*tally) {
	var order []string
	groups := make(map[string]*tally)
	for _, s := range scans {
		for _, u := range s.Citations() {
			key := keyOf(u)
			t, ok := groups[key]
			if !ok {
				t = newTally()
				groups[key] = t
				order = append(order, key)
			}
			t.total++
			t.prompts[s.QueryID()] = struct{}{}
			t.urls[u] = struct{}{}
		}
	}
	return order, groups
}

// CitationsByURL groups citations by literal URL, most cited first.
// Ties keep the order in which URLs were first seen.
func CitationsByURL(scans []scan.Scan, brandDomain string) []URLCitation {
	order, groups := groupCitations(scans, func(u string) string { return u })

	out := make([]URLCitation, 0, len(order))
	for _, u := range order {
		t := groups[u]
		host := Hostname(u)
		out = append(out, URLCitation{
			URL:            u,
			Domain:         host,
			TotalCitations: t.total,
			PromptCount:    len(t.prompts),
			IsBrand:        MatchesDomain(host, brandDomain),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalCitations > out[j].TotalCitations
	})
	return out
}

// CitationsByDomain groups citations by hostname, most cited first.
func CitationsByDomain(scans []scan.Scan, brandDomain string) []DomainCitation {
	order, groups := groupCitations(scans, Hostname)

	out := make([]DomainCitation, 0, len(order))
	for _, host := range order {
		t := groups[host]
		out = append(out, DomainCitation{
			Domain:         host,
			TotalCitations: t.total,
			UniqueURLs:     len(t.urls),
			PromptCount:    len(t.prompts),
			IsBrand:        MatchesDomain(host, brandDomain),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalCitations > out[j].TotalCitations
	})
	return out
}

// TopDomains returns at most n of the most cited domains.
func TopDomains(scans []scan.Scan, brandDomain string, n int) []DomainCitation {
	all := CitationsByDomain(scans, brandDomain)
	if len(all) > n {
		all = all[:n]
	}
	return all
}
