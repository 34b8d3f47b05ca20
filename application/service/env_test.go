package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/infrastructure/persistence"
	"github.com/helixml/citetrack/internal/database"
	"github.com/helixml/citetrack/internal/testdb"
)

const tenant = "tenant-a"

type testEnv struct {
	db     database.Database
	stores Stores
	events persistence.EventStore
	outbox *Outbox
	logger *slog.Logger
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db := testdb.New(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	events := persistence.NewEventStore(db)
	return testEnv{
		db: db,
		stores: Stores{
			Brands:      persistence.NewBrandStore(db),
			Prompts:     persistence.NewPromptStore(db),
			Scans:       persistence.NewScanStore(db),
			Memos:       persistence.NewMemoStore(db),
			Competitors: persistence.NewCompetitorStore(db),
			Feeds:       persistence.NewFeedStore(db),
			Posts:       persistence.NewPostStore(db),
		},
		events: events,
		outbox: NewOutbox(events, logger),
		logger: logger,
	}
}

func (e testEnv) dispatcher() *Dispatcher {
	return NewDispatcher(e.stores, e.outbox, e.db, e.logger)
}

func (e testEnv) saveBrand(t *testing.T, b brand.Brand) brand.Brand {
	t.Helper()
	saved, err := e.stores.Brands.Save(context.Background(), b)
	require.NoError(t, err)
	return saved
}

func (e testEnv) pendingEvents(t *testing.T) []workflow.Event {
	t.Helper()
	events, err := e.outbox.Pending(context.Background(), 0)
	require.NoError(t, err)
	return events
}

// failingBus rejects every event.
type failingBus struct{}

func (failingBus) Send(context.Context, workflow.Event) error {
	return errors.New("bus unavailable")
}

// recordingTransport records published events and fails while err is set.
type recordingTransport struct {
	published []workflow.Event
	err       error
}

func (r *recordingTransport) Publish(_ context.Context, e workflow.Event) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, e)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
