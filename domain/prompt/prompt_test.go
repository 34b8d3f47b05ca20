package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompt_IsBranded(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		brand string
		want  bool
	}{
		{"contains brand", "Is Acme better than Globex?", "acme", true},
		{"case insensitive", "best ACME alternatives", "Acme", true},
		{"unbranded", "best project management tools", "Acme", false},
		{"empty brand", "anything", "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrompt("b1", tt.text, "", "", StageTop, 0)
			assert.Equal(t, tt.want, p.IsBranded(tt.brand))
		})
	}
}

func TestNewPrompt_StartsNeverScanned(t *testing.T) {
	p := NewPrompt("b1", "  best crm  ", "comparison", "cmo", StageMid, 3)

	assert.Equal(t, StatusNeverScanned, p.Status())
	assert.Equal(t, "best crm", p.Text())
	assert.NotEmpty(t, p.ID())
}

func TestFunnelStage(t *testing.T) {
	assert.True(t, StageBottom.Valid())
	assert.False(t, FunnelStage("middle").Valid())
	assert.Equal(t, "mid", StageMid.Short())
	assert.Equal(t, []FunnelStage{StageTop, StageMid, StageBottom}, Stages())
}

func TestSameText(t *testing.T) {
	assert.True(t, SameText("Best CRM ", "best crm"))
	assert.False(t, SameText("best crm", "best crm tools"))
}
