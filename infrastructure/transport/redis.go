// Package transport delivers workflow events to the asynchronous runner.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/helixml/citetrack/domain/workflow"
)

// DefaultStream is the Redis stream events are appended to.
const DefaultStream = "citetrack:workflow"

// Envelope is the JSON document written to the stream. DeliveryID is new on
// every publish; EventID and DedupKey identify the event across retries.
type Envelope struct {
	DeliveryID  uuid.UUID      `json:"delivery_id"`
	EventID     string         `json:"event_id"`
	Name        string         `json:"name"`
	DedupKey    string         `json:"dedup_key"`
	Payload     map[string]any `json:"payload"`
	Attempt     int            `json:"attempt"`
	PublishedAt time.Time      `json:"published_at"`
}

// NewEnvelope wraps an event for publishing.
func NewEnvelope(e workflow.Event) Envelope {
	return Envelope{
		DeliveryID:  uuid.New(),
		EventID:     e.ID(),
		Name:        e.Name().String(),
		DedupKey:    e.DedupKey(),
		Payload:     e.Payload(),
		Attempt:     e.Attempts() + 1,
		PublishedAt: time.Now().UTC(),
	}
}

// RedisStream publishes events to a Redis stream with XADD.
type RedisStream struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewRedisStream creates a RedisStream. An empty stream name uses
// DefaultStream.
func NewRedisStream(client *redis.Client, stream string, logger *slog.Logger) *RedisStream {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStream{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// NewRedisStreamFromURL connects to Redis at url and verifies the
// connection.
func NewRedisStreamFromURL(ctx context.Context, url, stream string, logger *slog.Logger) (*RedisStream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStream(client, stream, logger), nil
}

// WithMaxLen caps the stream length approximately. Zero leaves it unbounded.
func (r *RedisStream) WithMaxLen(n int64) *RedisStream {
	r.maxLen = n
	return r
}

// Stream returns the stream name.
func (r *RedisStream) Stream() string { return r.stream }

// Publish appends the event to the stream.
func (r *RedisStream) Publish(ctx context.Context, e workflow.Event) error {
	payload, err := json.Marshal(NewEnvelope(e))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"event": string(payload),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("publish to stream: %w", err)
	}

	r.logger.Debug("published event",
		slog.String("event", e.Name().String()),
		slog.String("brand_id", e.BrandID()),
		slog.String("stream_id", id),
	)
	return nil
}

// Close closes the Redis client.
func (r *RedisStream) Close() error {
	return r.client.Close()
}
