// Package analytics turns scan records into ranked visibility insight.
// Every function in this package is pure: the same input always yields the
// same output, so results may be memoized freely.
package analytics

import (
	"net/url"
	"strings"
)

// Hostname returns the lower-cased host of a cited URL with any leading
// "www." removed. URLs without a scheme are read as https.
func Hostname(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	host := ""
	if u, err := url.Parse(s); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		host = s[strings.Index(s, "://")+3:]
		if i := strings.IndexAny(host, "/?#:"); i >= 0 {
			host = host[:i]
		}
	}
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// MatchesDomain reports whether a host belongs to a registered domain.
// The check is a case-insensitive substring test in either direction, so
// "acme.com" matches "bigacme.com" as well as "blog.acme.com". Short
// domains nested in longer ones are misattributed; this is kept for
// compatibility with existing reports.
func MatchesDomain(host, domain string) bool {
	h := Hostname(host)
	d := Hostname(domain)
	if h == "" || d == "" {
		return false
	}
	return strings.Contains(d, h) || strings.Contains(h, d)
}
