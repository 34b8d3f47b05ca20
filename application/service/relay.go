package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/helixml/citetrack/domain/workflow"
)

// Transport publishes an event to the workflow runner.
type Transport interface {
	Publish(ctx context.Context, e workflow.Event) error
}

// RelayMetrics records delivery outcomes.
type RelayMetrics interface {
	Delivered(name workflow.Name, latency time.Duration)
	Failed(name workflow.Name, exhausted bool)
}

type noopRelayMetrics struct{}

func (noopRelayMetrics) Delivered(workflow.Name, time.Duration) {}
func (noopRelayMetrics) Failed(workflow.Name, bool)             {}

// Relay moves events from the outbox to a Transport.
type Relay struct {
	store       workflow.EventStore
	transport   Transport
	metrics     RelayMetrics
	logger      *slog.Logger
	pollPeriod  time.Duration
	maxAttempts int

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRelay creates a new outbox relay.
func NewRelay(store workflow.EventStore, transport Transport, logger *slog.Logger) *Relay {
	return &Relay{
		store:       store,
		transport:   transport,
		metrics:     noopRelayMetrics{},
		logger:      logger,
		pollPeriod:  time.Second,
		maxAttempts: 5,
	}
}

// WithPollPeriod sets the poll period for checking new events.
func (r *Relay) WithPollPeriod(d time.Duration) *Relay {
	r.pollPeriod = d
	return r
}

// WithMaxAttempts sets how many failed deliveries mark an event failed.
func (r *Relay) WithMaxAttempts(n int) *Relay {
	r.maxAttempts = n
	return r
}

// WithMetrics sets the delivery metrics recorder.
func (r *Relay) WithMetrics(m RelayMetrics) *Relay {
	if m != nil {
		r.metrics = m
	}
	return r
}

// Start begins relaying in a goroutine. Stop ends it.
func (r *Relay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Go(func() {
		r.run(ctx)
	})

	r.logger.Info("outbox relay started", slog.Duration("poll_period", r.pollPeriod))
}

// Stop shuts the relay down after the in-flight event.
func (r *Relay) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	r.logger.Info("outbox relay stopped")
}

func (r *Relay) run(ctx context.Context) {
	ticker := time.NewTicker(r.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.drain(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("error relaying events",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// drain delivers pending events until the outbox is empty or the next event
// already failed during this pass. A failing event never holds back the
// events queued after it.
func (r *Relay) drain(ctx context.Context) error {
	seen := make(map[string]struct{})
	for {
		e, found, err := r.store.Next(ctx)
		if err != nil {
			return fmt.Errorf("next event: %w", err)
		}
		if !found {
			return nil
		}
		if _, ok := seen[e.ID()]; ok {
			return nil
		}
		delivered, err := r.deliver(ctx, e)
		if err != nil {
			return err
		}
		if !delivered {
			seen[e.ID()] = struct{}{}
		}
	}
}

// ProcessOne delivers the next pending event. It reports whether an event
// was delivered.
func (r *Relay) ProcessOne(ctx context.Context) (bool, error) {
	e, found, err := r.store.Next(ctx)
	if err != nil {
		return false, fmt.Errorf("next event: %w", err)
	}
	if !found {
		return false, nil
	}
	return r.deliver(ctx, e)
}

func (r *Relay) deliver(ctx context.Context, e workflow.Event) (bool, error) {
	if err := r.publishWithRecovery(ctx, e); err != nil {
		failed := e.WithFailure(err, r.maxAttempts)
		exhausted := failed.Status() == workflow.StatusFailed
		r.metrics.Failed(e.Name(), exhausted)
		r.logger.Warn("event delivery failed",
			slog.String("event_id", e.ID()),
			slog.String("event", e.Name().String()),
			slog.String("brand_id", e.BrandID()),
			slog.Int("attempts", failed.Attempts()),
			slog.Bool("exhausted", exhausted),
			slog.String("error", err.Error()),
		)
		if uerr := r.store.Update(ctx, failed); uerr != nil {
			return false, fmt.Errorf("record failure: %w", uerr)
		}
		return false, nil
	}

	if err := r.store.Delete(ctx, e); err != nil {
		return false, fmt.Errorf("delete delivered event: %w", err)
	}
	r.metrics.Delivered(e.Name(), time.Since(e.CreatedAt()))
	r.logger.Info("event delivered",
		slog.String("event_id", e.ID()),
		slog.String("event", e.Name().String()),
		slog.String("brand_id", e.BrandID()),
	)
	return true, nil
}

func (r *Relay) publishWithRecovery(ctx context.Context, e workflow.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("transport panicked: %v", rec)
		}
	}()
	return r.transport.Publish(ctx, e)
}
