package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/domain/feed"
	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/scan"
	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/internal/database"
)

// newTestDB creates an in-memory SQLite database for testing.
// Cannot use testdb package here due to import cycle (testdb imports persistence).
func newTestDB(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBrandStore_ContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewBrandStore(newTestDB(t))

	profile, err := brand.NewContext().WithPersona(brand.NewPersona("Head of Growth", "senior"))
	require.NoError(t, err)
	profile = profile.WithPersonaDisabled("cmo", true)

	b := brand.NewBrand("tenant-1", "Acme", "acme.com").WithContext(profile)
	_, err = store.Save(ctx, b)
	require.NoError(t, err)

	got, err := store.FindOne(ctx, repository.WithID(b.ID()))
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name())
	assert.True(t, got.Context().IsDisabled("cmo"))
	p, ok := got.Context().Persona("head-of-growth")
	require.True(t, ok)
	assert.Equal(t, "senior", p.Seniority())
}

func TestBrandStore_PausedFilter(t *testing.T) {
	ctx := context.Background()
	store := NewBrandStore(newTestDB(t))

	_, err := store.Save(ctx, brand.NewBrand("t", "Active", "active.com"))
	require.NoError(t, err)
	_, err = store.Save(ctx, brand.NewBrand("t", "Paused", "paused.com").WithPaused(true))
	require.NoError(t, err)

	active, err := store.Find(ctx, brand.WithPaused(false))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Active", active[0].Name())
}

func TestBrandStore_FindOneMissing(t *testing.T) {
	store := NewBrandStore(newTestDB(t))

	_, err := store.FindOne(context.Background(), repository.WithID("missing"))
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestScanStore_OptionalFieldsAndLatest(t *testing.T) {
	ctx := context.Background()
	store := NewScanStore(newTestDB(t))

	latest, err := store.LatestScannedAt(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	early := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	bare := scan.NewScan("b1", "q1", "gpt", early)
	rich := scan.NewScan("b1", "q2", "claude", late,
		scan.WithMention(2, scan.SentimentPositive),
		scan.WithCitations("https://acme.com/a", "https://globex.com"),
		scan.WithBrandCited(true),
		scan.WithCompetitors("Globex"),
	)
	other := scan.NewScan("b2", "q1", "gpt", late.Add(time.Hour))
	for _, s := range []scan.Scan{bare, rich, other} {
		_, err := store.Save(ctx, s)
		require.NoError(t, err)
	}

	latest, err = store.LatestScannedAt(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, latest.Equal(late), "got %s", latest)

	got, err := store.Find(ctx, repository.WithBrandID("b1"), scan.WithQueryIDIn([]string{"q2"}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	pos, ok := got[0].BrandPosition()
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
	assert.True(t, got[0].BrandCited())
	assert.Equal(t, []string{"https://acme.com/a", "https://globex.com"}, got[0].Citations())
	assert.Equal(t, []string{"Globex"}, got[0].CompetitorsMentioned())

	got, err = store.Find(ctx, repository.WithBrandID("b1"), scan.WithQueryIDIn([]string{"q1"}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	_, ok = got[0].BrandPosition()
	assert.False(t, ok)
	assert.Nil(t, got[0].BrandInCitations())

	n, err := store.Count(ctx, repository.WithBrandID("b1"), scan.WithScannedSince(late))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoStore_SourceQueryFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoStore(newTestDB(t))

	linked := memo.NewMemo("b1", "Acme vs Globex", "acme-vs-globex", memo.TypeComparison, "q1")
	free := memo.NewMemo("b1", "CRM guide", "crm-guide", memo.TypeGuide, "")
	for _, m := range []memo.Memo{linked, free} {
		_, err := store.Save(ctx, m)
		require.NoError(t, err)
	}

	got, err := store.Find(ctx, memo.WithSourceQueryID("q1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, linked.ID(), got[0].ID())

	all, err := store.Find(ctx, repository.WithBrandID("b1"), repository.WithOrderAsc("slug"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "", all[1].SourceQueryID())
}

func TestCompetitorStore_Deactivate(t *testing.T) {
	ctx := context.Background()
	store := NewCompetitorStore(newTestDB(t))

	c, err := store.Save(ctx, competitor.NewCompetitor("b1", "Globex", "Globex.com"))
	require.NoError(t, err)
	_, err = store.Save(ctx, c.Deactivate())
	require.NoError(t, err)

	active, err := store.Find(ctx, repository.WithBrandID("b1"), competitor.WithActive(true))
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.Find(ctx, repository.WithBrandID("b1"))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "globex.com", all[0].Domain())
}

func TestPostStore_SyncStatus(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	feeds := NewFeedStore(db)
	posts := NewPostStore(db)

	f, err := feeds.Save(ctx, feed.NewFeed("b1", "https://acme.com/feed.xml"))
	require.NoError(t, err)

	p := feed.NewPost("b1", f.ID(), "ext-1", "Launch", "https://acme.com/launch")
	_, err = posts.Save(ctx, p)
	require.NoError(t, err)
	_, err = posts.Save(ctx, p.WithStatus(feed.SyncSynced))
	require.NoError(t, err)

	synced, err := posts.Find(ctx, feed.WithFeedID(f.ID()), feed.WithSyncStatus(feed.SyncSynced))
	require.NoError(t, err)
	require.Len(t, synced, 1)
	assert.NotNil(t, synced[0].SyncedAt())
}

func TestEventStore_DedupResetsToPending(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore(newTestDB(t))

	payload := map[string]any{"brand_id": "b1", "query_id": "q1"}
	first := workflow.NewEvent(workflow.NameMemoGenerate, payload)
	_, err := store.Save(ctx, first)
	require.NoError(t, err)

	stored, ok, err := store.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Update(ctx, stored.WithFailure(errors.New("broker down"), 1)))

	_, ok, err = store.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Save(ctx, workflow.NewEvent(workflow.NameMemoGenerate, payload))
	require.NoError(t, err)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	again, ok, err := store.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, again.Attempts())
	assert.Equal(t, "b1", again.BrandID())

	require.NoError(t, store.Delete(ctx, again))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEventStore_NextIsOldestPending(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore(newTestDB(t))

	older := workflow.ReconstructEvent("e1", workflow.NameScanRun, map[string]any{"brand_id": "b1"}, "k1",
		workflow.StatusPending, 0, "", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := workflow.ReconstructEvent("e2", workflow.NameScanRun, map[string]any{"brand_id": "b2"}, "k2",
		workflow.StatusPending, 0, "", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	_, err := store.Save(ctx, newer)
	require.NoError(t, err)
	_, err = store.Save(ctx, older)
	require.NoError(t, err)

	next, ok, err := store.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "e1", next.ID())

	scans, err := store.Find(ctx, workflow.WithName(workflow.NameScanRun))
	require.NoError(t, err)
	assert.Len(t, scans, 2)
}
