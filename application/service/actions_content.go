package service

import (
	"context"

	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/internal/domain"
)

// DefaultFunnelStage is used when add_prompt names no stage.
const DefaultFunnelStage = prompt.StageTop

func validateGenerateMemo(f Fields) error {
	t, err := f.Required("memo_type")
	if err != nil {
		return err
	}
	if !memo.Type(t).Valid() {
		return domain.Validation("unknown memo type %q", t)
	}
	_, err = f.OptionalUUID("query_id")
	return err
}

func validateAddPrompt(f Fields) error {
	if _, err := f.Required("text"); err != nil {
		return err
	}
	if stage := f.String("funnel_stage"); stage != "" && !prompt.FunnelStage(stage).Valid() {
		return domain.Validation("unknown funnel stage %q", stage)
	}
	return nil
}

func (d *Dispatcher) loadMemo(ctx context.Context, b brand.Brand, id string) (memo.Memo, error) {
	m, err := d.stores.Memos.FindOne(ctx, repository.WithID(id), repository.WithBrandID(b.ID()))
	if err != nil {
		return memo.Memo{}, storeError("memo", err)
	}
	return m, nil
}

func (d *Dispatcher) loadPrompt(ctx context.Context, b brand.Brand, id string) (prompt.Prompt, error) {
	p, err := d.stores.Prompts.FindOne(ctx, repository.WithID(id), repository.WithBrandID(b.ID()))
	if err != nil {
		return prompt.Prompt{}, storeError("prompt", err)
	}
	return p, nil
}

func generatePayload(brandID string, memoType memo.Type, sourceQueryID string) map[string]any {
	payload := map[string]any{
		"brand_id":  brandID,
		"memo_type": string(memoType),
	}
	if sourceQueryID != "" {
		payload["source_query_id"] = sourceQueryID
	}
	return payload
}

// regenerateMemo deletes the memo and queues its replacement in one unit of
// work, so the memo is never gone without a pending generate event.
func (d *Dispatcher) regenerateMemo(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	id, _ := f.UUID("memo_id")
	m, err := d.loadMemo(ctx, b, id)
	if err != nil {
		return ActionResult{}, err
	}

	err = d.uow.InTransaction(ctx, func(ctx context.Context) error {
		if err := d.stores.Memos.Delete(ctx, m); err != nil {
			return domain.Upstream("delete memo", err)
		}
		return d.emit(ctx, workflow.NameMemoGenerate, generatePayload(b.ID(), m.Type(), m.SourceQueryID()))
	})
	if err != nil {
		return ActionResult{}, err
	}
	return result("memo regeneration queued", "memo_id", m.ID(), "memo_type", string(m.Type())), nil
}

func (d *Dispatcher) generateMemo(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	memoType := memo.Type(f.String("memo_type"))
	queryID, _ := f.OptionalUUID("query_id")
	if queryID != "" {
		if _, err := d.loadPrompt(ctx, b, queryID); err != nil {
			return ActionResult{}, err
		}
	}

	if err := d.emit(ctx, workflow.NameMemoGenerate, generatePayload(b.ID(), memoType, queryID)); err != nil {
		return ActionResult{}, err
	}
	return result("memo generation queued", "memo_type", string(memoType)), nil
}

func (d *Dispatcher) deleteMemo(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	id, _ := f.UUID("memo_id")
	m, err := d.loadMemo(ctx, b, id)
	if err != nil {
		return ActionResult{}, err
	}
	if err := d.stores.Memos.Delete(ctx, m); err != nil {
		return ActionResult{}, domain.Upstream("delete memo", err)
	}
	return result("memo deleted", "memo_id", m.ID()), nil
}

// addPrompt inserts the prompt and queues its first scan together.
func (d *Dispatcher) addPrompt(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	text := f.String("text")
	existing, err := d.stores.Prompts.Find(ctx, repository.WithBrandID(b.ID()))
	if err != nil {
		return ActionResult{}, domain.Upstream("load prompts", err)
	}
	for _, p := range existing {
		if prompt.SameText(p.Text(), text) {
			return ActionResult{}, domain.Conflict("prompt already tracked")
		}
	}

	stage := prompt.FunnelStage(f.String("funnel_stage"))
	if stage == "" {
		stage = DefaultFunnelStage
	}
	priority, _ := f.Int("priority")
	p := prompt.NewPrompt(b.ID(), text, f.String("type"), f.String("persona"), stage, priority)

	err = d.uow.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := d.stores.Prompts.Save(ctx, p); err != nil {
			return domain.Upstream("save prompt", err)
		}
		return d.emit(ctx, workflow.NameScanPrompt, map[string]any{"brand_id": b.ID(), "query_id": p.ID()})
	})
	if err != nil {
		return ActionResult{}, err
	}
	return result("prompt added", "query_id", p.ID(), "funnel_stage", string(stage)), nil
}

func (d *Dispatcher) deletePrompt(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	id, _ := f.UUID("query_id")
	p, err := d.loadPrompt(ctx, b, id)
	if err != nil {
		return ActionResult{}, err
	}
	if err := d.stores.Prompts.Delete(ctx, p); err != nil {
		return ActionResult{}, domain.Upstream("delete prompt", err)
	}
	return result("prompt deleted", "query_id", p.ID()), nil
}
