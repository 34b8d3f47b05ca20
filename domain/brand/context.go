package brand

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Persona errors.
var (
	ErrPersonaExists       = errors.New("persona already exists")
	ErrPersonaNotFound     = errors.New("persona not found")
	ErrPersonaAutoDetected = errors.New("auto-detected persona cannot be removed")
)

// Context is the structured profile stored alongside a brand.
// Writers must re-read the latest Context, modify it, and save the whole
// structure back. Concurrent writers race and the last write wins.
type Context struct {
	description string
	industry    string
	personas    []Persona
	disabled    []string
	extra       map[string]json.RawMessage
}

// NewContext creates an empty Context.
func NewContext() Context {
	return Context{}
}

// ReconstructContext recreates a Context from stored values.
func ReconstructContext(description, industry string, personas []Persona, disabled []string) Context {
	return Context{
		description: description,
		industry:    industry,
		personas:    slices.Clone(personas),
		disabled:    slices.Clone(disabled),
	}
}

// Description returns the free-text brand description.
func (c Context) Description() string { return c.description }

// Industry returns the brand's industry label.
func (c Context) Industry() string { return c.industry }

// Personas returns a copy of the persona list.
func (c Context) Personas() []Persona { return slices.Clone(c.personas) }

// DisabledPersonas returns a copy of the disabled persona ids.
func (c Context) DisabledPersonas() []string { return slices.Clone(c.disabled) }

// Persona looks up a persona by id.
func (c Context) Persona(id string) (Persona, bool) {
	for _, p := range c.personas {
		if p.ID() == id {
			return p, true
		}
	}
	return Persona{}, false
}

// IsDisabled reports whether the persona id is on the disabled list.
func (c Context) IsDisabled(id string) bool {
	return slices.Contains(c.disabled, id)
}

// WithPersonaDisabled adds id to or removes it from the disabled list.
// The list never holds duplicates.
func (c Context) WithPersonaDisabled(id string, disabled bool) Context {
	out := make([]string, 0, len(c.disabled)+1)
	for _, d := range c.disabled {
		if d != id {
			out = append(out, d)
		}
	}
	if disabled {
		out = append(out, id)
	}
	c.disabled = out
	return c
}

// WithPersona appends a new persona. An existing id is a conflict.
func (c Context) WithPersona(p Persona) (Context, error) {
	if _, ok := c.Persona(p.ID()); ok {
		return c, fmt.Errorf("%w: %s", ErrPersonaExists, p.ID())
	}
	c.personas = append(slices.Clone(c.personas), p)
	return c, nil
}

// EnsurePersona adds p when its id is absent and re-enables it.
func (c Context) EnsurePersona(p Persona) Context {
	if _, ok := c.Persona(p.ID()); !ok {
		c.personas = append(slices.Clone(c.personas), p)
	}
	return c.WithPersonaDisabled(p.ID(), false)
}

// WithoutPersona removes a custom persona and its disabled entry.
// Auto-detected personas can only be disabled.
func (c Context) WithoutPersona(id string) (Context, error) {
	p, ok := c.Persona(id)
	if !ok {
		return c, fmt.Errorf("%w: %s", ErrPersonaNotFound, id)
	}
	if p.AutoDetected() {
		return c, fmt.Errorf("%w: %s", ErrPersonaAutoDetected, id)
	}
	c.personas = slices.DeleteFunc(slices.Clone(c.personas), func(x Persona) bool {
		return x.ID() == id
	})
	return c.WithPersonaDisabled(id, false), nil
}

type contextJSON struct {
	Description      string        `json:"description,omitempty"`
	Industry         string        `json:"industry,omitempty"`
	Personas         []personaJSON `json:"personas"`
	DisabledPersonas []string      `json:"disabled_personas"`
}

var contextKeys = []string{"description", "industry", "personas", "disabled_personas"}

// MarshalJSON encodes the Context. Keys this package does not manage are
// written back unchanged.
func (c Context) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.extra)+len(contextKeys))
	for k, v := range c.extra {
		out[k] = v
	}

	personas := make([]personaJSON, len(c.personas))
	for i, p := range c.personas {
		personas[i] = p.toJSON()
	}
	disabled := c.disabled
	if disabled == nil {
		disabled = []string{}
	}
	known, err := json.Marshal(contextJSON{
		Description:      c.description,
		Industry:         c.industry,
		Personas:         personas,
		DisabledPersonas: disabled,
	})
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a Context, keeping unmanaged keys.
func (c *Context) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode brand context: %w", err)
	}
	var known contextJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("decode brand context: %w", err)
	}

	personas := make([]Persona, len(known.Personas))
	for i, p := range known.Personas {
		personas[i] = p.toDomain()
	}
	for _, k := range contextKeys {
		delete(raw, k)
	}

	*c = ReconstructContext(known.Description, known.Industry, personas, known.DisabledPersonas)
	if len(raw) > 0 {
		c.extra = raw
	}
	return nil
}
