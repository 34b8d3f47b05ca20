package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/citetrack/domain/analytics"
	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/opportunity"
	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/domain/scan"
	"github.com/helixml/citetrack/internal/domain"
)

var reportNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

type analyticsFixture struct {
	env     testEnv
	service *Analytics
	brand   brand.Brand
	unbrand prompt.Prompt
	branded prompt.Prompt
}

func newAnalyticsFixture(t *testing.T) analyticsFixture {
	t.Helper()
	ctx := context.Background()
	env := newTestEnv(t)
	b := env.saveBrand(t, brand.NewBrand(tenant, "Acme", "acme.com"))

	unbranded := prompt.NewPrompt(b.ID(), "best crm for startups", "", "", prompt.StageMid, 0)
	branded := prompt.NewPrompt(b.ID(), "is acme any good", "", "", prompt.StageBottom, 0)
	for _, p := range []prompt.Prompt{unbranded, branded} {
		_, err := env.stores.Prompts.Save(ctx, p)
		require.NoError(t, err)
	}
	_, err := env.stores.Competitors.Save(ctx, competitor.NewCompetitor(b.ID(), "Globex", "globex.com"))
	require.NoError(t, err)
	_, err = env.stores.Memos.Save(ctx, memo.NewMemo(b.ID(), "CRM for startups", "crm-for-startups", memo.TypeGuide, ""))
	require.NoError(t, err)

	scans := []scan.Scan{
		scan.NewScan(b.ID(), unbranded.ID(), "gpt", reportNow.Add(-time.Hour),
			scan.WithCitations("https://globex.com/startups", "https://a.com/x"),
			scan.WithCompetitors("Globex")),
		scan.NewScan(b.ID(), unbranded.ID(), "claude", reportNow.AddDate(0, 0, -2),
			scan.WithCitations("https://globex.com/startups")),
		scan.NewScan(b.ID(), branded.ID(), "gpt", reportNow.AddDate(0, 0, -1),
			scan.WithMention(1, scan.SentimentPositive),
			scan.WithCitations("https://www.acme.com/reviews"),
			scan.WithBrandCited(true)),
		// Outside any window used below.
		scan.NewScan(b.ID(), unbranded.ID(), "gpt", reportNow.AddDate(0, 0, -90),
			scan.WithCitations("https://old.example.com")),
	}
	for _, s := range scans {
		_, err := env.stores.Scans.Save(ctx, s)
		require.NoError(t, err)
	}

	service, err := NewAnalytics(env.stores, opportunity.NewDetector(nil), 8, env.logger)
	require.NoError(t, err)
	service.WithClock(fixedClock(reportNow))

	return analyticsFixture{env: env, service: service, brand: b, unbrand: unbranded, branded: branded}
}

func TestAnalytics_Report(t *testing.T) {
	f := newAnalyticsFixture(t)

	r, err := f.service.Report(context.Background(), tenant, f.brand.ID(), 7, analytics.ViewAll)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Summary.TotalScans)
	assert.Equal(t, 3, r.Summary.ScansWithCitations)
	assert.Equal(t, 33, r.Summary.MentionRate)
	assert.Equal(t, 33, r.Summary.CitationRate)
	assert.Len(t, r.Timeline, 7)
	require.NotEmpty(t, r.URLs)
	assert.Equal(t, "https://globex.com/startups", r.URLs[0].URL)
	assert.Equal(t, 2, r.URLs[0].TotalCitations)
	assert.Equal(t, 1, r.URLs[0].PromptCount)
	assert.Equal(t, 1, r.Summary.BrandURLs)
}

func TestAnalytics_ReportViews(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()

	unbranded, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewUnbranded)
	require.NoError(t, err)
	assert.Equal(t, 2, unbranded.Summary.TotalScans)

	branded, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewBranded)
	require.NoError(t, err)
	assert.Equal(t, 1, branded.Summary.TotalScans)

	_, err = f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.View("sideways"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAnalytics_ReportValidation(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()

	_, err := f.service.Report(ctx, tenant, f.brand.ID(), 0, analytics.ViewAll)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.Report(ctx, "someone-else", f.brand.ID(), 7, analytics.ViewAll)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.Report(ctx, tenant, "not-a-uuid", 7, analytics.ViewAll)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAnalytics_ReportCacheInvalidatedByNewScan(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()

	first, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewAll)
	require.NoError(t, err)
	again, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewAll)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	_, err = f.env.stores.Scans.Save(ctx, scan.NewScan(f.brand.ID(), f.unbrand.ID(), "gemini", reportNow))
	require.NoError(t, err)

	fresh, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewAll)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.Summary.TotalScans)
}

func funnelMemos(r analytics.Report) int {
	n := 0
	for _, stage := range r.Funnel {
		n += stage.PublishedMemos + stage.DraftMemos
	}
	return n
}

func funnelScans(r analytics.Report) int {
	n := 0
	for _, stage := range r.Funnel {
		n += stage.ScanCount
	}
	return n
}

func TestAnalytics_ReportCacheInvalidatedByMemoAndPromptChanges(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	d := f.env.dispatcher()

	before, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewAll)
	require.NoError(t, err)
	require.Equal(t, 1, funnelMemos(before))
	require.Equal(t, 3, funnelScans(before))

	memos, err := f.env.stores.Memos.Find(ctx)
	require.NoError(t, err)
	require.Len(t, memos, 1)
	_, err = dispatch(t, d, f.brand, ActionDeleteMemo, Fields{"memo_id": memos[0].ID()})
	require.NoError(t, err)

	afterMemo, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewAll)
	require.NoError(t, err)
	assert.Equal(t, 0, funnelMemos(afterMemo))

	_, err = dispatch(t, d, f.brand, ActionDeletePrompt, Fields{"query_id": f.unbrand.ID()})
	require.NoError(t, err)

	afterPrompt, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewAll)
	require.NoError(t, err)
	assert.Equal(t, 1, funnelScans(afterPrompt))

	// A memo written outside the dispatcher is picked up too.
	published := memo.ReconstructMemo(uuid.NewString(), f.brand.ID(), "Acme review", "acme-review",
		memo.TypeGuide, memo.StatusPublished, "", reportNow.Add(-time.Hour), nil)
	_, err = f.env.stores.Memos.Save(ctx, published)
	require.NoError(t, err)

	afterPublish, err := f.service.Report(ctx, tenant, f.brand.ID(), 7, analytics.ViewAll)
	require.NoError(t, err)
	assert.Equal(t, 1, funnelMemos(afterPublish))
}

func TestAnalytics_ConcurrentReportsAgree(t *testing.T) {
	f := newAnalyticsFixture(t)

	var wg sync.WaitGroup
	results := make([]analytics.Report, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Go(func() {
			results[i], errs[i] = f.service.Report(context.Background(), tenant, f.brand.ID(), 7, analytics.ViewAll)
		})
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
}

func TestAnalytics_Opportunities(t *testing.T) {
	f := newAnalyticsFixture(t)

	s, err := f.service.Opportunities(context.Background(), tenant, f.brand.ID(), 7)
	require.NoError(t, err)

	require.Len(t, s.Groups, 2)
	assert.Equal(t, 1, s.EligiblePrompts)
	assert.Equal(t, 1, s.Counts[opportunity.StatusOpportunity])
	assert.Equal(t, 1, s.Counts[opportunity.StatusBranded])
	assert.Equal(t, 100, s.OpportunityRate)
}

func TestAnalytics_ContentMatches(t *testing.T) {
	f := newAnalyticsFixture(t)

	matches, err := f.service.ContentMatches(context.Background(), tenant, f.brand.ID(), 7)
	require.NoError(t, err)

	require.Contains(t, matches, "https://globex.com/startups")
	require.Len(t, matches["https://globex.com/startups"], 1)
	assert.Equal(t, "crm-for-startups", matches["https://globex.com/startups"][0].Slug())
	assert.Empty(t, matches["https://a.com/x"])
	assert.NotContains(t, matches, "https://www.acme.com/reviews")
}
