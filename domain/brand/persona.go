package brand

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Persona is a named buyer archetype prompts are written for.
type Persona struct {
	id           string
	title        string
	seniority    string
	autoDetected bool
}

// NewPersona creates a custom persona whose id is the slug of its title.
func NewPersona(title, seniority string) Persona {
	title = strings.TrimSpace(title)
	return Persona{
		id:        Slugify(title),
		title:     title,
		seniority: strings.TrimSpace(seniority),
	}
}

// ReconstructPersona recreates a Persona from stored values.
func ReconstructPersona(id, title, seniority string, autoDetected bool) Persona {
	return Persona{id: id, title: title, seniority: seniority, autoDetected: autoDetected}
}

// ID returns the persona slug.
func (p Persona) ID() string { return p.id }

// Title returns the display title.
func (p Persona) Title() string { return p.title }

// Seniority returns the seniority label, if any.
func (p Persona) Seniority() string { return p.seniority }

// AutoDetected reports whether the persona was inferred rather than added.
func (p Persona) AutoDetected() bool { return p.autoDetected }

type personaJSON struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Seniority    string `json:"seniority,omitempty"`
	AutoDetected bool   `json:"is_auto_detected"`
}

func (p Persona) toJSON() personaJSON {
	return personaJSON{ID: p.id, Title: p.title, Seniority: p.seniority, AutoDetected: p.autoDetected}
}

func (j personaJSON) toDomain() Persona {
	return ReconstructPersona(j.ID, j.Title, j.Seniority, j.AutoDetected)
}

// Slugify lower-cases s, folds accents to ASCII, and joins the remaining
// alphanumeric runs with single hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

var coreCatalog = []Persona{
	ReconstructPersona("founder", "Founder", "executive", false),
	ReconstructPersona("cmo", "Chief Marketing Officer", "executive", false),
	ReconstructPersona("cto", "Chief Technology Officer", "executive", false),
	ReconstructPersona("marketing-manager", "Marketing Manager", "manager", false),
	ReconstructPersona("product-manager", "Product Manager", "manager", false),
	ReconstructPersona("procurement-lead", "Procurement Lead", "manager", false),
	ReconstructPersona("engineer", "Engineer", "individual", false),
	ReconstructPersona("consumer", "Consumer", "individual", false),
}

// CorePersona looks up a persona in the built-in catalog.
func CorePersona(id string) (Persona, bool) {
	for _, p := range coreCatalog {
		if p.id == id {
			return p, true
		}
	}
	return Persona{}, false
}

// CorePersonas returns the built-in catalog.
func CorePersonas() []Persona {
	out := make([]Persona, len(coreCatalog))
	copy(out, coreCatalog)
	return out
}
