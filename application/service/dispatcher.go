package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/internal/domain"
)

// Action names. The set is closed: any other name is rejected before any
// store is touched.
const (
	ActionTogglePersona    = "toggle_persona"
	ActionAddCorePersona   = "add_core_persona"
	ActionAddPersona       = "add_persona"
	ActionRemovePersona    = "remove_persona"
	ActionRegenerateMemo   = "regenerate_memo"
	ActionGenerateMemo     = "generate_memo"
	ActionDeleteMemo       = "delete_memo"
	ActionPause            = "pause"
	ActionUnpause          = "unpause"
	ActionRunScan          = "run_scan"
	ActionAddPrompt        = "add_prompt"
	ActionDeletePrompt     = "delete_prompt"
	ActionAddCompetitor    = "add_competitor"
	ActionRemoveCompetitor = "remove_competitor"
	ActionAddFeed          = "add_feed"
	ActionRemoveFeed       = "remove_feed"
	ActionResyncPosts      = "resync_posts"
)

// ActionRequest is a brand-scoped operation.
type ActionRequest struct {
	TenantID string
	BrandID  string
	Action   string
	Fields   Fields
}

// ActionResult is the outcome of a successful action.
type ActionResult struct {
	Message string
	Data    map[string]any
}

func result(message string, kv ...any) ActionResult {
	data := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			data[k] = kv[i+1]
		}
	}
	return ActionResult{Message: message, Data: data}
}

// handler validates and runs one action. validate runs before any store
// access; execute receives the tenant-checked brand.
type handler struct {
	validate func(f Fields) error
	execute  func(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error)
}

// DispatchMetrics records dispatch outcomes.
type DispatchMetrics interface {
	Dispatched(action string, err error)
}

type noopDispatchMetrics struct{}

func (noopDispatchMetrics) Dispatched(string, error) {}

// Dispatcher validates brand-scoped actions, applies their mutations and
// emits workflow events through the Bus.
type Dispatcher struct {
	stores   Stores
	bus      Bus
	uow      UnitOfWork
	metrics  DispatchMetrics
	logger   *slog.Logger
	handlers map[string]handler
}

// NewDispatcher creates a Dispatcher. uow scopes multi-write actions; the
// Bus must write through the same unit of work for those writes to commit
// together.
func NewDispatcher(stores Stores, bus Bus, uow UnitOfWork, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		stores:  stores,
		bus:     bus,
		uow:     uow,
		metrics: noopDispatchMetrics{},
		logger:  logger,
	}
	d.handlers = map[string]handler{
		ActionTogglePersona:    {validate: requireFields("persona_id"), execute: d.togglePersona},
		ActionAddCorePersona:   {validate: validateCorePersona, execute: d.addCorePersona},
		ActionAddPersona:       {validate: validateAddPersona, execute: d.addPersona},
		ActionRemovePersona:    {validate: requireFields("persona_id"), execute: d.removePersona},
		ActionRegenerateMemo:   {validate: requireUUIDs("memo_id"), execute: d.regenerateMemo},
		ActionGenerateMemo:     {validate: validateGenerateMemo, execute: d.generateMemo},
		ActionDeleteMemo:       {validate: requireUUIDs("memo_id"), execute: d.deleteMemo},
		ActionPause:            {validate: noFields, execute: d.setPaused(true)},
		ActionUnpause:          {validate: noFields, execute: d.setPaused(false)},
		ActionRunScan:          {validate: noFields, execute: d.runScan},
		ActionAddPrompt:        {validate: validateAddPrompt, execute: d.addPrompt},
		ActionDeletePrompt:     {validate: requireUUIDs("query_id"), execute: d.deletePrompt},
		ActionAddCompetitor:    {validate: requireFields("name"), execute: d.addCompetitor},
		ActionRemoveCompetitor: {validate: requireUUIDs("competitor_id"), execute: d.removeCompetitor},
		ActionAddFeed:          {validate: validateAddFeed, execute: d.addFeed},
		ActionRemoveFeed:       {validate: requireUUIDs("feed_id"), execute: d.removeFeed},
		ActionResyncPosts:      {validate: noFields, execute: d.resyncPosts},
	}
	return d
}

// WithMetrics sets the dispatch metrics recorder.
func (d *Dispatcher) WithMetrics(m DispatchMetrics) *Dispatcher {
	if m != nil {
		d.metrics = m
	}
	return d
}

// Actions returns the supported action names, sorted.
func (d *Dispatcher) Actions() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch runs one action. Checks happen in a fixed order: action name,
// brand id shape, action fields, brand ownership, nested entity ownership,
// then mutations and events.
func (d *Dispatcher) Dispatch(ctx context.Context, req ActionRequest) (ActionResult, error) {
	res, err := d.dispatch(ctx, req)
	d.metrics.Dispatched(req.Action, err)
	if err != nil && !isCallerError(err) {
		d.logger.ErrorContext(ctx, "action failed",
			slog.String("action", req.Action),
			slog.String("brand_id", req.BrandID),
			slog.String("error", err.Error()),
		)
	}
	return res, err
}

func (d *Dispatcher) dispatch(ctx context.Context, req ActionRequest) (ActionResult, error) {
	h, ok := d.handlers[req.Action]
	if !ok {
		return ActionResult{}, domain.Validation("unknown action %q", req.Action)
	}
	if _, err := uuid.Parse(req.BrandID); err != nil {
		return ActionResult{}, domain.Validation("invalid brand id %q", req.BrandID)
	}
	fields := req.Fields
	if fields == nil {
		fields = Fields{}
	}
	if err := h.validate(fields); err != nil {
		return ActionResult{}, err
	}

	b, err := d.stores.loadBrand(ctx, req.TenantID, req.BrandID)
	if err != nil {
		return ActionResult{}, err
	}

	res, err := h.execute(ctx, b, fields)
	if err != nil {
		return ActionResult{}, categorize(err)
	}
	d.logger.InfoContext(ctx, "action dispatched",
		slog.String("action", req.Action),
		slog.String("brand_id", b.ID()),
	)
	return res, nil
}

// emit sends one event and wraps a failure as upstream.
func (d *Dispatcher) emit(ctx context.Context, name workflow.Name, payload map[string]any) error {
	if err := d.bus.Send(ctx, workflow.NewEvent(name, payload)); err != nil {
		return domain.Upstream("send "+name.String(), err)
	}
	return nil
}

func isCallerError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict)
}

// categorize leaves categorized errors alone and marks the rest unexpected.
func categorize(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Unexpected("dispatch action", err)
}

func noFields(Fields) error { return nil }

func requireFields(keys ...string) func(Fields) error {
	return func(f Fields) error {
		for _, k := range keys {
			if _, err := f.Required(k); err != nil {
				return err
			}
		}
		return nil
	}
}

func requireUUIDs(keys ...string) func(Fields) error {
	return func(f Fields) error {
		for _, k := range keys {
			if _, err := f.UUID(k); err != nil {
				return err
			}
		}
		return nil
	}
}
