package opportunity

import "strings"

// Blocklist rejects competitor names that are noise rather than rivals.
type Blocklist interface {
	Blocked(name string) bool
}

// NameBlocklist blocks names case-insensitively.
type NameBlocklist struct {
	names map[string]struct{}
}

var defaultNoise = []string{
	"none", "n/a", "na", "unknown", "other", "others", "various",
	"competitor", "competitors", "no competitors", "not mentioned",
}

// NewNameBlocklist creates a NameBlocklist from names.
func NewNameBlocklist(names ...string) NameBlocklist {
	b := NameBlocklist{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if key := normalize(n); key != "" {
			b.names[key] = struct{}{}
		}
	}
	return b
}

// DefaultBlocklist blocks the placeholder names models emit when no
// competitor was named.
func DefaultBlocklist() NameBlocklist {
	return NewNameBlocklist(defaultNoise...)
}

// With returns a copy that also blocks names.
func (b NameBlocklist) With(names ...string) NameBlocklist {
	out := NewNameBlocklist(names...)
	for k := range b.names {
		out.names[k] = struct{}{}
	}
	return out
}

// Blocked reports whether name is on the list.
func (b NameBlocklist) Blocked(name string) bool {
	_, ok := b.names[normalize(name)]
	return ok
}

// Len returns the number of blocked names.
func (b NameBlocklist) Len() int { return len(b.names) }

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
