package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/workflow"
)

// DefaultScanSchedule runs scans daily at 06:00 UTC.
const DefaultScanSchedule = "0 6 * * *"

// Scheduler emits recurring scan events for every unpaused brand.
type Scheduler struct {
	brands   brand.BrandStore
	bus      Bus
	logger   *slog.Logger
	schedule string

	cron *cron.Cron
	mu   sync.Mutex
}

// NewScheduler creates a Scheduler. The schedule is a standard five-field
// cron expression evaluated in UTC.
func NewScheduler(schedule string, brands brand.BrandStore, bus Bus, logger *slog.Logger) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultScanSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse scan schedule %q: %w", schedule, err)
	}
	return &Scheduler{
		brands:   brands,
		bus:      bus,
		logger:   logger,
		schedule: schedule,
	}, nil
}

// Start registers the job and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLogger{logger: s.logger}), cron.SkipIfStillRunning(cronLogger{logger: s.logger})),
	)
	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("scheduled scan failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return fmt.Errorf("register scan job: %w", err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("scan scheduler started", slog.String("schedule", s.schedule))
	return nil
}

// Stop stops the cron runner and waits for a running tick.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("scan scheduler stopped")
}

// Tick emits one scan.run event per unpaused brand and returns how many
// were sent. A brand paused between the read and the send may still get
// one scan.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	brands, err := s.brands.Find(ctx)
	if err != nil {
		return 0, fmt.Errorf("find brands: %w", err)
	}

	sent := 0
	for _, b := range brands {
		if b.IsPaused() {
			s.logger.Debug("skipping paused brand", slog.String("brand_id", b.ID()))
			continue
		}
		e := workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": b.ID()})
		if err := s.bus.Send(ctx, e); err != nil {
			if ctx.Err() != nil {
				return sent, ctx.Err()
			}
			s.logger.Warn("failed to schedule scan",
				slog.String("brand_id", b.ID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		sent++
	}

	s.logger.Info("scheduled scans", slog.Int("sent", sent), slog.Int("brands", len(brands)))
	return sent, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
