// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payload represents a schema-agnostic pipeline run report.
// The three pipeline generations emit structurally different shapes
// (current flat fields, a "legacySnapshot" nesting, a "legacyStatistics"
// nesting), so nothing beyond well-formed JSON is validated here; the
// analytics extractor is the schema-tolerance layer.
type Payload map[string]any

// NewPayload creates a Payload from raw JSON bytes.
func NewPayload(raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 {
		return make(Payload), nil
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

// Raw returns the JSON representation of the payload.
func (p Payload) Raw() (json.RawMessage, error) {
	return json.Marshal(p)
}

// Float64 retrieves a numeric payload value.
// Returns 0 and false if the key doesn't exist or isn't numeric.
func (p Payload) Float64(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}

// String retrieves a string payload value.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Child retrieves a nested object as a Payload.
// Returns nil and false if the key doesn't exist or isn't an object.
func (p Payload) Child(key string) (Payload, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]any:
		return Payload(m), true
	case Payload:
		return m, true
	default:
		return nil, false
	}
}

// Lookup walks a nested path of object keys and returns the value at the end.
func (p Payload) Lookup(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := p
	for _, key := range path[:len(path)-1] {
		next, ok := cur.Child(key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	v, ok := cur[path[len(path)-1]]
	return v, ok
}

// Record is a stored pipeline run report. The envelope (source, receipt
// time, run identity) is validated; the payload itself stays free-form.
type Record struct {
	ID         int64
	RunID      uuid.UUID
	SourceSlug SourceSlug
	ReceivedAt time.Time
	Payload    Payload
}

// NewRecord creates a new Record with envelope validation.
func NewRecord(sourceSlug string, receivedAt time.Time, payload json.RawMessage) (*Record, error) {
	slug, err := NewSourceSlug(sourceSlug)
	if err != nil {
		return nil, err
	}

	if receivedAt.IsZero() {
		return nil, fmt.Errorf("%w: receipt time is required", ErrInvalidRecord)
	}

	// Normalize to UTC
	receivedAt = receivedAt.UTC()

	// Reject future receipt times (with small tolerance for clock skew)
	if receivedAt.After(time.Now().UTC().Add(5 * time.Minute)) {
		return nil, fmt.Errorf("%w: receipt time is in the future", ErrInvalidRecord)
	}

	p, err := NewPayload(payload)
	if err != nil {
		return nil, err
	}

	return &Record{
		RunID:      uuid.New(),
		SourceSlug: slug,
		ReceivedAt: receivedAt,
		Payload:    p,
	}, nil
}

// Age returns how old the record is.
func (r *Record) Age() time.Duration {
	return time.Since(r.ReceivedAt)
}
