// Package workflow provides the events handed to the external workflow runner.
package workflow

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Name identifies a workflow the runner should start.
type Name string

// Workflow event names.
const (
	NameScanRun      Name = "citetrack.scan.run"
	NameScanPrompt   Name = "citetrack.scan.prompt"
	NameMemoGenerate Name = "citetrack.memo.generate"
	NameFeedSync     Name = "citetrack.feed.sync"
	NamePostSync     Name = "citetrack.post.sync"
)

// String returns the string representation of the name.
func (n Name) String() string {
	return string(n)
}

// IsScan reports whether the event starts a scan workflow.
func (n Name) IsScan() bool {
	return strings.HasPrefix(string(n), "citetrack.scan.")
}

// Status is the delivery state of an outbox event.
type Status string

// Status values.
const (
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

// Event is a named workflow trigger with a replay-safe payload.
// Delivery is at-least-once, so the payload carries only the brand id and
// stable business parameters and consumers must be idempotent.
type Event struct {
	id        string
	name      Name
	payload   map[string]any
	dedupKey  string
	status    Status
	attempts  int
	lastError string
	createdAt time.Time
	updatedAt time.Time
}

// NewEvent creates a pending event. The dedup key is derived from the name
// and payload so that identical triggers coalesce.
func NewEvent(name Name, payload map[string]any) Event {
	p := copyPayload(payload)
	now := time.Now().UTC()
	return Event{
		id:        uuid.NewString(),
		name:      name,
		payload:   p,
		dedupKey:  createDedupKey(name, p),
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructEvent recreates an Event from persistence.
func ReconstructEvent(
	id string,
	name Name,
	payload map[string]any,
	dedupKey string,
	status Status,
	attempts int,
	lastError string,
	createdAt, updatedAt time.Time,
) Event {
	return Event{
		id:        id,
		name:      name,
		payload:   copyPayload(payload),
		dedupKey:  dedupKey,
		status:    status,
		attempts:  attempts,
		lastError: lastError,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the event identifier.
func (e Event) ID() string { return e.id }

// Name returns the workflow name.
func (e Event) Name() Name { return e.name }

// Payload returns a copy of the payload.
func (e Event) Payload() map[string]any { return copyPayload(e.payload) }

// DedupKey returns the deduplication key.
func (e Event) DedupKey() string { return e.dedupKey }

// Status returns the delivery state.
func (e Event) Status() Status { return e.status }

// Attempts returns how many deliveries failed.
func (e Event) Attempts() int { return e.attempts }

// LastError returns the most recent delivery error.
func (e Event) LastError() string { return e.lastError }

// CreatedAt returns when the event was first emitted.
func (e Event) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns when the event last changed.
func (e Event) UpdatedAt() time.Time { return e.updatedAt }

// BrandID returns the payload's brand_id, or "".
func (e Event) BrandID() string {
	v, _ := e.payload["brand_id"].(string)
	return v
}

// WithFailure returns a copy recording a failed delivery. The event is
// marked failed once attempts reaches maxAttempts.
func (e Event) WithFailure(err error, maxAttempts int) Event {
	e.attempts++
	e.lastError = err.Error()
	if maxAttempts > 0 && e.attempts >= maxAttempts {
		e.status = StatusFailed
	}
	e.updatedAt = time.Now().UTC()
	return e
}

// PayloadJSON returns the payload as JSON bytes.
func (e Event) PayloadJSON() ([]byte, error) {
	return json.Marshal(e.payload)
}

// createDedupKey builds "{name}:{payload as JSON}". encoding/json sorts map
// keys, so equal payloads always produce equal keys.
func createDedupKey(name Name, payload map[string]any) string {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%s:%v", name, payload)
	}
	return fmt.Sprintf("%s:%s", name, b)
}

func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(payload))
	maps.Copy(result, payload)
	return result
}
