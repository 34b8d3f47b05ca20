// Package citetrack measures how often LLM answers mention or cite a brand
// and dispatches the background work that keeps that data fresh.
//
// Basic usage:
//
//	client, err := citetrack.New(
//	    citetrack.WithSQLite(".citetrack/citetrack.db"),
//	    citetrack.WithRedis(os.Getenv("REDIS_URL"), ""),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Visibility over the last 30 days
//	report, err := client.Analytics.Report(ctx, tenantID, brandID, 30, analytics.ViewAll)
//
//	// Queue a scan
//	_, err = client.Actions.Dispatch(ctx, service.ActionRequest{
//	    TenantID: tenantID,
//	    BrandID:  brandID,
//	    Action:   service.ActionRunScan,
//	})
package citetrack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helixml/citetrack/application/service"
	"github.com/helixml/citetrack/domain/opportunity"
	"github.com/helixml/citetrack/infrastructure/blocklist"
	"github.com/helixml/citetrack/infrastructure/metrics"
	"github.com/helixml/citetrack/infrastructure/persistence"
	"github.com/helixml/citetrack/infrastructure/transport"
	"github.com/helixml/citetrack/internal/config"
	"github.com/helixml/citetrack/internal/database"
)

// Connection pool limits for PostgreSQL. SQLite always uses one connection.
const (
	postgresMaxOpenConns    = 20
	postgresMaxIdleConns    = 5
	postgresConnMaxLifetime = 30 * time.Minute
)

// Client is the main entry point for the citetrack library.
// The relay and scheduler start automatically on creation unless
// WithoutBackground is given.
//
// Access services via struct fields:
//
//	client.Analytics.Report(ctx, tenant, brand, 30, analytics.ViewAll)
//	client.Actions.Dispatch(ctx, req)
//	client.Outbox.Failed(ctx)
type Client struct {
	Analytics *service.Analytics
	Actions   *service.Dispatcher
	Outbox    *service.Outbox
	Metrics   *metrics.Metrics

	db        database.Database
	stores    service.Stores
	relay     *service.Relay
	scheduler *service.Scheduler
	cancel    context.CancelFunc
	closers   []io.Closer

	logger     *slog.Logger
	apiKeys    []string
	background bool
	closed     atomic.Bool
	mu         sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.dbURL == "" {
		if cfg.dataDir == "" {
			return nil, ErrNoDatabase
		}
		if _, err := config.PrepareDataDir(cfg.dataDir); err != nil {
			return nil, err
		}
	}

	blocked, err := blocklist.Load(cfg.blocklistFile)
	if err != nil {
		return nil, fmt.Errorf("load blocklist: %w", err)
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.databaseURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if db.IsPostgres() {
		if err := db.ConfigurePool(postgresMaxOpenConns, postgresMaxIdleConns, postgresConnMaxLifetime); err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("configure pool: %w", err), errClose)
		}
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	var closers []io.Closer
	eventTransport := cfg.transport
	if eventTransport == nil {
		eventTransport, err = buildTransport(ctx, cfg, logger)
		if err != nil {
			errClose := db.Close()
			return nil, errors.Join(err, errClose)
		}
	}
	if c, ok := eventTransport.(io.Closer); ok {
		closers = append(closers, c)
	}

	stores := service.Stores{
		Brands:      persistence.NewBrandStore(db),
		Prompts:     persistence.NewPromptStore(db),
		Scans:       persistence.NewScanStore(db),
		Memos:       persistence.NewMemoStore(db),
		Competitors: persistence.NewCompetitorStore(db),
		Feeds:       persistence.NewFeedStore(db),
		Posts:       persistence.NewPostStore(db),
	}
	eventStore := persistence.NewEventStore(db)
	outbox := service.NewOutbox(eventStore, logger)
	m := metrics.New()

	analyticsSvc, err := service.NewAnalytics(stores, opportunity.NewDetector(blocked), cfg.analyticsCacheSize, logger)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("create analytics: %w", err), errClose)
	}

	scheduler, err := service.NewScheduler(cfg.scanSchedule, stores.Brands, outbox, logger)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("create scheduler: %w", err), errClose)
	}

	relay := service.NewRelay(eventStore, eventTransport, logger).
		WithPollPeriod(cfg.relayPollPeriod).
		WithMaxAttempts(cfg.relayMaxAttempts).
		WithMetrics(m)

	client := &Client{
		Analytics:  analyticsSvc,
		Actions:    service.NewDispatcher(stores, outbox, db, logger).WithMetrics(m),
		Outbox:     outbox,
		Metrics:    m,
		db:         db,
		stores:     stores,
		relay:      relay,
		scheduler:  scheduler,
		closers:    closers,
		logger:     logger,
		apiKeys:    cfg.apiKeys,
		background: cfg.background,
	}

	if cfg.background {
		runCtx, cancel := context.WithCancel(context.Background())
		client.cancel = cancel
		relay.Start(runCtx)
		if err := scheduler.Start(runCtx); err != nil {
			cancel()
			relay.Stop()
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("start scheduler: %w", err), errClose)
		}
	}

	return client, nil
}

func buildTransport(ctx context.Context, cfg *clientConfig, logger *slog.Logger) (service.Transport, error) {
	if cfg.redisURL == "" {
		logger.Warn("no redis url configured, workflow events will only be logged")
		return transport.NewLog(logger), nil
	}
	stream, err := transport.NewRedisStreamFromURL(ctx, cfg.redisURL, cfg.redisStream, logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return stream, nil
}

// Close stops background work and releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.background {
		c.scheduler.Stop()
		c.cancel()
		c.relay.Stop()
	}

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("citetrack client closed")
	return nil
}

// Relay returns the outbox relay. It is running unless WithoutBackground was given.
func (c *Client) Relay() *service.Relay {
	return c.relay
}

// Scheduler returns the recurring scan scheduler.
func (c *Client) Scheduler() *service.Scheduler {
	return c.scheduler
}

// Stores returns the record stores, for seeding and administration.
func (c *Client) Stores() service.Stores {
	return c.stores
}

// APIKeys returns the keys accepted by the HTTP API.
func (c *Client) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
