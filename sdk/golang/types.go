// SPDX-License-Identifier: MIT

package golang

import (
	"encoding/json"
	"time"
)

// RegisterRequest is the payload for source registration.
type RegisterRequest struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	PublicKey string `json:"public_key"`
}

// TelemetryRequest is the payload for run report submission.
type TelemetryRequest struct {
	SourceSlug string          `json:"source_slug"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload"`
}
