// Package prompt provides tracked natural-language prompts and funnel stages.
package prompt

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FunnelStage is a buyer-journey phase assigned to a prompt.
type FunnelStage string

// FunnelStage values.
const (
	StageTop    FunnelStage = "top_funnel"
	StageMid    FunnelStage = "mid_funnel"
	StageBottom FunnelStage = "bottom_funnel"
)

// Stages returns the funnel stages in journey order.
func Stages() []FunnelStage {
	return []FunnelStage{StageTop, StageMid, StageBottom}
}

// Valid reports whether s is one of the three known stages.
func (s FunnelStage) Valid() bool {
	return s == StageTop || s == StageMid || s == StageBottom
}

// Short returns "top", "mid" or "bottom".
func (s FunnelStage) Short() string {
	return strings.TrimSuffix(string(s), "_funnel")
}

// Status is the derived citation status of a prompt. The external scan
// pipeline writes it; this service only reads it.
type Status string

// Status values.
const (
	StatusNeverScanned Status = "never_scanned"
	StatusGap          Status = "gap"
	StatusCited        Status = "cited"
	StatusLostCitation Status = "lost_citation"
)

// Prompt is a tracked natural-language query.
type Prompt struct {
	id             string
	brandID        string
	text           string
	promptType     string
	persona        string
	stage          FunnelStage
	priority       int
	status         Status
	citationStreak int
	createdAt      time.Time
}

// NewPrompt creates a never-scanned prompt for a brand.
func NewPrompt(brandID, text, promptType, persona string, stage FunnelStage, priority int) Prompt {
	return Prompt{
		id:         uuid.NewString(),
		brandID:    brandID,
		text:       strings.TrimSpace(text),
		promptType: promptType,
		persona:    persona,
		stage:      stage,
		priority:   priority,
		status:     StatusNeverScanned,
		createdAt:  time.Now().UTC(),
	}
}

// ReconstructPrompt recreates a Prompt from persistence.
func ReconstructPrompt(
	id, brandID, text, promptType, persona string,
	stage FunnelStage,
	priority int,
	status Status,
	citationStreak int,
	createdAt time.Time,
) Prompt {
	return Prompt{
		id:             id,
		brandID:        brandID,
		text:           text,
		promptType:     promptType,
		persona:        persona,
		stage:          stage,
		priority:       priority,
		status:         status,
		citationStreak: citationStreak,
		createdAt:      createdAt,
	}
}

// ID returns the prompt identifier.
func (p Prompt) ID() string { return p.id }

// BrandID returns the owning brand.
func (p Prompt) BrandID() string { return p.brandID }

// Text returns the prompt text.
func (p Prompt) Text() string { return p.text }

// Type returns the prompt type label.
func (p Prompt) Type() string { return p.promptType }

// Persona returns the persona id the prompt targets.
func (p Prompt) Persona() string { return p.persona }

// FunnelStage returns the assigned funnel stage.
func (p Prompt) FunnelStage() FunnelStage { return p.stage }

// Priority returns the scan priority.
func (p Prompt) Priority() int { return p.priority }

// Status returns the current citation status.
func (p Prompt) Status() Status { return p.status }

// CitationStreak returns the consecutive cited scan count.
func (p Prompt) CitationStreak() int { return p.citationStreak }

// CreatedAt returns the creation timestamp.
func (p Prompt) CreatedAt() time.Time { return p.createdAt }

// IsBranded reports whether the prompt text names the brand. Branded
// prompts are excluded from opportunity detection and rate denominators.
func (p Prompt) IsBranded(brandName string) bool {
	name := strings.ToLower(strings.TrimSpace(brandName))
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.text), name)
}

// SameText reports whether two prompt texts are duplicates.
func SameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
