package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/citetrack/domain/workflow"
)

func TestRelay_DeliversAndRemovesEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": "b1"})))

	transport := &recordingTransport{}
	relay := NewRelay(env.events, transport, env.logger)

	delivered, err := relay.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, delivered)
	require.Len(t, transport.published, 1)
	assert.Equal(t, "b1", transport.published[0].BrandID())

	n, err := env.outbox.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	delivered, err = relay.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestRelay_MarksFailedAfterMaxAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": "b1"})))

	transport := &recordingTransport{err: errors.New("connection refused")}
	relay := NewRelay(env.events, transport, env.logger).WithMaxAttempts(2)

	for range 2 {
		delivered, err := relay.ProcessOne(ctx)
		require.NoError(t, err)
		assert.False(t, delivered)
	}

	assert.Empty(t, env.pendingEvents(t))
	failed, err := env.outbox.Failed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Attempts())
	assert.Equal(t, "connection refused", failed[0].LastError())

	// A replay of the same event revives it.
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": "b1"})))
	transport.err = nil
	delivered, err := relay.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, delivered)
}

type panickingTransport struct{}

func (panickingTransport) Publish(context.Context, workflow.Event) error {
	panic("boom")
}

func TestRelay_RecoversTransportPanic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameFeedSync, nil)))

	delivered, err := NewRelay(env.events, panickingTransport{}, env.logger).ProcessOne(ctx)

	require.NoError(t, err)
	assert.False(t, delivered)
	events := env.pendingEvents(t)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].LastError(), "transport panicked")
}

func TestRelay_StartStop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": "b1"})))

	relay := NewRelay(env.events, &recordingTransport{}, env.logger).WithPollPeriod(10 * time.Millisecond)
	relay.Start(ctx)

	assert.Eventually(t, func() bool {
		n, err := env.outbox.Count(ctx)
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)

	relay.Stop()
}

// rejectingTransport fails events for one brand and records the rest.
type rejectingTransport struct {
	brandID   string
	published []workflow.Event
}

func (r *rejectingTransport) Publish(_ context.Context, e workflow.Event) error {
	if e.BrandID() == r.brandID {
		return errors.New("schema rejected")
	}
	r.published = append(r.published, e)
	return nil
}

func TestRelay_FailingEventDoesNotBlockLaterEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": "stuck"})))
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": "b1"})))
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": "b2"})))

	transport := &rejectingTransport{brandID: "stuck"}
	relay := NewRelay(env.events, transport, env.logger).WithMaxAttempts(10)

	require.NoError(t, relay.drain(ctx))

	require.Len(t, transport.published, 2)
	assert.ElementsMatch(t, []string{"b1", "b2"}, []string{transport.published[0].BrandID(), transport.published[1].BrandID()})

	pending := env.pendingEvents(t)
	require.Len(t, pending, 1)
	assert.Equal(t, "stuck", pending[0].BrandID())
	assert.Equal(t, 1, pending[0].Attempts())

	// A new event sent after the failure goes out ahead of the retry.
	require.NoError(t, env.outbox.Send(ctx, workflow.NewEvent(workflow.NameScanRun, map[string]any{"brand_id": "b3"})))
	delivered, err := relay.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, "b3", transport.published[2].BrandID())
}
