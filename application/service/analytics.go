package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/helixml/citetrack/domain/analytics"
	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/domain/matching"
	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/opportunity"
	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/scan"
	"github.com/helixml/citetrack/internal/domain"
)

// Reporting window bounds, in days.
const (
	DefaultWindowDays = 30
	MaxWindowDays     = 365
)

// DefaultCacheSize is the number of reports kept in memory.
const DefaultCacheSize = 256

// ValidateWindow rejects windows outside 1..MaxWindowDays.
func ValidateWindow(days int) error {
	if days <= 0 {
		return domain.Validation("window must be a positive number of days")
	}
	if days > MaxWindowDays {
		return domain.Validation("window must be at most %d days", MaxWindowDays)
	}
	return nil
}

// reportKey identifies a cached report. The watermark changes whenever a
// scan, prompt or memo of the brand is added, removed or published; day
// covers the timeline's dependence on the current date.
type reportKey struct {
	brandID    string
	windowDays int
	view       analytics.View
	watermark  watermark
	day        string
}

func (k reportKey) String() string {
	return fmt.Sprintf("%s/%d/%s/%s/%s", k.brandID, k.windowDays, k.view, k.watermark, k.day)
}

// watermark summarizes the records a report is built from.
type watermark struct {
	lastScan       int64
	prompts        int64
	lastPrompt     int64
	memos          int64
	publishedMemos int64
	lastMemo       int64
}

func (w watermark) String() string {
	return fmt.Sprintf("%d.%d.%d.%d.%d.%d", w.lastScan, w.prompts, w.lastPrompt, w.memos, w.publishedMemos, w.lastMemo)
}

// Analytics serves visibility reports, opportunity summaries and content
// matches for a brand.
type Analytics struct {
	stores   Stores
	detector opportunity.Detector
	matcher  matching.Matcher
	cache    *lru.Cache[reportKey, analytics.Report]
	group    singleflight.Group
	now      func() time.Time
	logger   *slog.Logger
}

// NewAnalytics creates the analytics read service.
func NewAnalytics(stores Stores, detector opportunity.Detector, cacheSize int, logger *slog.Logger) (*Analytics, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[reportKey, analytics.Report](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &Analytics{
		stores:   stores,
		detector: detector,
		matcher:  matching.NewMatcher(),
		cache:    cache,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// WithClock replaces the time source.
func (a *Analytics) WithClock(now func() time.Time) *Analytics {
	a.now = now
	return a
}

// WithMatcher replaces the content matcher.
func (a *Analytics) WithMatcher(m matching.Matcher) *Analytics {
	a.matcher = m
	return a
}

// Report returns the visibility report for a brand. Identical concurrent
// calls share one computation and results are cached until the brand's
// scans, prompts or memos change.
func (a *Analytics) Report(ctx context.Context, tenantID, brandID string, windowDays int, view analytics.View) (analytics.Report, error) {
	if err := ValidateWindow(windowDays); err != nil {
		return analytics.Report{}, err
	}
	if view == "" {
		view = analytics.ViewAll
	}
	if _, err := analytics.ParseView(string(view)); err != nil {
		return analytics.Report{}, domain.Validation("%s", err.Error())
	}

	b, err := a.stores.loadBrand(ctx, tenantID, brandID)
	if err != nil {
		return analytics.Report{}, err
	}

	mark, err := a.watermark(ctx, b.ID())
	if err != nil {
		return analytics.Report{}, err
	}

	now := a.now().UTC()
	key := reportKey{
		brandID:    b.ID(),
		windowDays: windowDays,
		view:       view,
		watermark:  mark,
		day:        now.Format(time.DateOnly),
	}
	if cached, ok := a.cache.Get(key); ok {
		return cached, nil
	}

	v, err, shared := a.group.Do(key.String(), func() (any, error) {
		report, err := a.buildReport(ctx, b, windowDays, view, now)
		if err != nil {
			return nil, err
		}
		a.cache.Add(key, report)
		return report, nil
	})
	if err != nil {
		return analytics.Report{}, err
	}
	if shared {
		a.logger.Debug("report computation shared", slog.String("brand_id", b.ID()))
	}
	return v.(analytics.Report), nil
}

func (a *Analytics) watermark(ctx context.Context, brandID string) (watermark, error) {
	lastScan, err := a.stores.Scans.LatestScannedAt(ctx, brandID)
	if err != nil {
		return watermark{}, domain.Upstream("load scan watermark", err)
	}
	prompts, err := a.stores.Prompts.Count(ctx, repository.WithBrandID(brandID))
	if err != nil {
		return watermark{}, domain.Upstream("count prompts", err)
	}
	lastPrompt, err := a.stores.Prompts.LatestCreatedAt(ctx, brandID)
	if err != nil {
		return watermark{}, domain.Upstream("load prompt watermark", err)
	}
	memos, err := a.stores.Memos.Count(ctx, repository.WithBrandID(brandID))
	if err != nil {
		return watermark{}, domain.Upstream("count memos", err)
	}
	published, err := a.stores.Memos.Count(ctx, repository.WithBrandID(brandID), memo.WithStatus(memo.StatusPublished))
	if err != nil {
		return watermark{}, domain.Upstream("count published memos", err)
	}
	lastMemo, err := a.stores.Memos.LatestCreatedAt(ctx, brandID)
	if err != nil {
		return watermark{}, domain.Upstream("load memo watermark", err)
	}
	return watermark{
		lastScan:       unixNano(lastScan),
		prompts:        prompts,
		lastPrompt:     unixNano(lastPrompt),
		memos:          memos,
		publishedMemos: published,
		lastMemo:       unixNano(lastMemo),
	}, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func (a *Analytics) buildReport(ctx context.Context, b brand.Brand, windowDays int, view analytics.View, now time.Time) (analytics.Report, error) {
	scans, prompts, err := a.windowRecords(ctx, b, windowDays, now)
	if err != nil {
		return analytics.Report{}, err
	}
	memos, err := a.stores.Memos.Find(ctx, repository.WithBrandID(b.ID()))
	if err != nil {
		return analytics.Report{}, domain.Upstream("load memos", err)
	}

	return analytics.Build(analytics.Input{
		BrandName:   b.Name(),
		BrandDomain: b.Domain(),
		WindowDays:  windowDays,
		View:        view,
		Now:         now,
		Scans:       scans,
		Prompts:     prompts,
		Memos:       memos,
	}), nil
}

// Opportunities classifies every scanned prompt of a brand within the
// window.
func (a *Analytics) Opportunities(ctx context.Context, tenantID, brandID string, windowDays int) (opportunity.Summary, error) {
	if err := ValidateWindow(windowDays); err != nil {
		return opportunity.Summary{}, err
	}
	b, err := a.stores.loadBrand(ctx, tenantID, brandID)
	if err != nil {
		return opportunity.Summary{}, err
	}

	scans, prompts, err := a.windowRecords(ctx, b, windowDays, a.now().UTC())
	if err != nil {
		return opportunity.Summary{}, err
	}
	competitors, err := a.stores.Competitors.Find(ctx, repository.WithBrandID(b.ID()))
	if err != nil {
		return opportunity.Summary{}, domain.Upstream("load competitors", err)
	}

	return a.detector.Detect(b, prompts, scans, competitors), nil
}

// ContentMatches maps each non-brand URL cited in the window to the brand's
// memos that address it.
func (a *Analytics) ContentMatches(ctx context.Context, tenantID, brandID string, windowDays int) (map[string][]memo.Memo, error) {
	if err := ValidateWindow(windowDays); err != nil {
		return nil, err
	}
	b, err := a.stores.loadBrand(ctx, tenantID, brandID)
	if err != nil {
		return nil, err
	}

	scans, _, err := a.windowRecords(ctx, b, windowDays, a.now().UTC())
	if err != nil {
		return nil, err
	}
	memos, err := a.stores.Memos.Find(ctx, repository.WithBrandID(b.ID()))
	if err != nil {
		return nil, domain.Upstream("load memos", err)
	}

	return a.matcher.MatchAll(matching.Input{Scans: scans, Memos: memos}, b.Domain()), nil
}

// Competitors returns the brand's registered competitors.
func (a *Analytics) Competitors(ctx context.Context, tenantID, brandID string) ([]competitor.Competitor, error) {
	b, err := a.stores.loadBrand(ctx, tenantID, brandID)
	if err != nil {
		return nil, err
	}
	competitors, err := a.stores.Competitors.Find(ctx, repository.WithBrandID(b.ID()), repository.WithOrderAsc("name"))
	if err != nil {
		return nil, domain.Upstream("load competitors", err)
	}
	return competitors, nil
}

func (a *Analytics) windowRecords(ctx context.Context, b brand.Brand, windowDays int, now time.Time) ([]scan.Scan, []prompt.Prompt, error) {
	scans, err := a.stores.Scans.Find(ctx,
		repository.WithBrandID(b.ID()),
		scan.WithScannedSince(analytics.WindowStart(now, windowDays)),
		repository.WithOrderAsc("scanned_at"),
	)
	if err != nil {
		return nil, nil, domain.Upstream("load scans", err)
	}
	prompts, err := a.stores.Prompts.Find(ctx, repository.WithBrandID(b.ID()))
	if err != nil {
		return nil, nil, domain.Upstream("load prompts", err)
	}
	return scans, prompts, nil
}
