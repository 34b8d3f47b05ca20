package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScan_CitationsSkipsEmpty(t *testing.T) {
	s := NewScan("b", "q", "gpt", time.Now(), WithCitations("https://a.com", "", "  ", "https://b.com"))

	assert.Equal(t, []string{"https://a.com", "https://b.com"}, s.Citations())
	assert.True(t, s.HasCitations())
}

func TestScan_BrandCitedRequiresExplicitTrue(t *testing.T) {
	unset := NewScan("b", "q", "gpt", time.Now())
	no := NewScan("b", "q", "gpt", time.Now(), WithBrandCited(false))
	yes := NewScan("b", "q", "gpt", time.Now(), WithBrandCited(true))

	assert.False(t, unset.BrandCited())
	assert.Nil(t, unset.BrandInCitations())
	assert.False(t, no.BrandCited())
	assert.True(t, yes.BrandCited())
}

func TestScan_WithMentionIgnoresNonPositivePosition(t *testing.T) {
	s := NewScan("b", "q", "gpt", time.Now(), WithMention(0, SentimentNeutral))

	_, ok := s.BrandPosition()
	assert.False(t, ok)
	assert.True(t, s.BrandMentioned())

	s = NewScan("b", "q", "gpt", time.Now(), WithMention(2, SentimentPositive))
	pos, ok := s.BrandPosition()
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
}
