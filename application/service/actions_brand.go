package service

import (
	"context"
	"errors"

	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/internal/domain"
)

func validateCorePersona(f Fields) error {
	id, err := f.Required("persona_id")
	if err != nil {
		return err
	}
	if _, ok := brand.CorePersona(id); !ok {
		return domain.Validation("unknown core persona %q", id)
	}
	return nil
}

func validateAddPersona(f Fields) error {
	title, err := f.Required("title")
	if err != nil {
		return err
	}
	if brand.Slugify(title) == "" {
		return domain.Validation("title must contain letters or digits")
	}
	return nil
}

// updateContext re-reads the brand, applies fn to its context and saves the
// whole context back. Concurrent writers race and the last write wins.
func (d *Dispatcher) updateContext(ctx context.Context, b brand.Brand, fn func(brand.Context) (brand.Context, error)) (brand.Brand, error) {
	latest, err := d.stores.Brands.FindOne(ctx, repository.WithID(b.ID()))
	if err != nil {
		return brand.Brand{}, storeError("brand", err)
	}
	profile, err := fn(latest.Context())
	if err != nil {
		return brand.Brand{}, err
	}
	saved, err := d.stores.Brands.Save(ctx, latest.WithContext(profile))
	if err != nil {
		return brand.Brand{}, domain.Upstream("save brand", err)
	}
	return saved, nil
}

func (d *Dispatcher) togglePersona(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	id := f.String("persona_id")
	var disabled bool
	_, err := d.updateContext(ctx, b, func(c brand.Context) (brand.Context, error) {
		_, known := c.Persona(id)
		if _, core := brand.CorePersona(id); !known && !core {
			return c, domain.NotFound("persona %q not found", id)
		}
		disabled = !c.IsDisabled(id)
		return c.WithPersonaDisabled(id, disabled), nil
	})
	if err != nil {
		return ActionResult{}, err
	}
	if disabled {
		return result("persona disabled", "persona_id", id, "disabled", true), nil
	}
	return result("persona enabled", "persona_id", id, "disabled", false), nil
}

func (d *Dispatcher) addCorePersona(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	p, _ := brand.CorePersona(f.String("persona_id"))
	_, err := d.updateContext(ctx, b, func(c brand.Context) (brand.Context, error) {
		return c.EnsurePersona(p), nil
	})
	if err != nil {
		return ActionResult{}, err
	}
	return result("persona added", "persona_id", p.ID()), nil
}

func (d *Dispatcher) addPersona(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	p := brand.NewPersona(f.String("title"), f.String("seniority"))
	// Catalog ids are reserved for add_core_persona.
	if _, ok := brand.CorePersona(p.ID()); ok {
		return ActionResult{}, domain.Conflict("persona %q is a core persona; use add_core_persona", p.ID())
	}
	_, err := d.updateContext(ctx, b, func(c brand.Context) (brand.Context, error) {
		next, err := c.WithPersona(p)
		if errors.Is(err, brand.ErrPersonaExists) {
			return c, domain.Conflict("persona %q already exists", p.ID())
		}
		return next, err
	})
	if err != nil {
		return ActionResult{}, err
	}
	return result("persona added", "persona_id", p.ID()), nil
}

func (d *Dispatcher) removePersona(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	id := f.String("persona_id")
	_, err := d.updateContext(ctx, b, func(c brand.Context) (brand.Context, error) {
		next, err := c.WithoutPersona(id)
		switch {
		case errors.Is(err, brand.ErrPersonaNotFound):
			return c, domain.NotFound("persona %q not found", id)
		case errors.Is(err, brand.ErrPersonaAutoDetected):
			return c, domain.Validation("persona %q was detected automatically; disable it instead", id)
		}
		return next, err
	})
	if err != nil {
		return ActionResult{}, err
	}
	return result("persona removed", "persona_id", id), nil
}

// setPaused only flips the flag. Pausing stops scheduled scans but never
// blocks other actions.
func (d *Dispatcher) setPaused(paused bool) func(context.Context, brand.Brand, Fields) (ActionResult, error) {
	return func(ctx context.Context, b brand.Brand, _ Fields) (ActionResult, error) {
		if _, err := d.stores.Brands.Save(ctx, b.WithPaused(paused)); err != nil {
			return ActionResult{}, domain.Upstream("save brand", err)
		}
		if paused {
			return result("brand paused", "is_paused", true), nil
		}
		return result("brand resumed", "is_paused", false), nil
	}
}

func (d *Dispatcher) runScan(ctx context.Context, b brand.Brand, _ Fields) (ActionResult, error) {
	if err := d.emit(ctx, workflow.NameScanRun, map[string]any{"brand_id": b.ID()}); err != nil {
		return ActionResult{}, err
	}
	return result("scan queued"), nil
}
