// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SourceSlug is a validated, URL-safe identifier for a data source.
type SourceSlug string

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// NewSourceSlug creates and validates a SourceSlug.
func NewSourceSlug(slug string) (SourceSlug, error) {
	if slug == "" {
		return "", fmt.Errorf("%w: slug cannot be empty", ErrInvalidSourceSlug)
	}

	if len(slug) > 100 {
		return "", fmt.Errorf("%w: slug too long (max 100 chars)", ErrInvalidSourceSlug)
	}

	if !slugRegex.MatchString(slug) {
		return "", fmt.Errorf("%w: must be lowercase alphanumeric with hyphens only", ErrInvalidSourceSlug)
	}

	return SourceSlug(slug), nil
}

// String returns the string representation.
func (s SourceSlug) String() string {
	return string(s)
}

// Slugify converts a free-form source name (e.g. "Wikipedia-Somali") into a
// valid slug.
func Slugify(s string) SourceSlug {
	result := strings.ToLower(s)

	var builder strings.Builder
	for _, r := range result {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			builder.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			builder.WriteRune('-')
		}
	}

	// Clean up hyphens
	result = strings.Trim(builder.String(), "-")
	result = regexp.MustCompile(`-+`).ReplaceAllString(result, "-")

	if result == "" {
		result = "source"
	}

	// Already validated format, safe to cast
	return SourceSlug(result)
}

// PipelineKind identifies which of the collection pipelines a source runs on.
type PipelineKind string

const (
	KindWebFetch       PipelineKind = "web-fetch"
	KindFileProcessing PipelineKind = "file-processing"
	KindStreaming      PipelineKind = "streaming"
)

// ParsePipelineKind validates a pipeline kind string.
func ParsePipelineKind(s string) (PipelineKind, error) {
	switch PipelineKind(s) {
	case KindWebFetch, KindFileProcessing, KindStreaming:
		return PipelineKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPipelineKind, s)
	}
}

// PublicKey is a hex-encoded Ed25519 public key.
type PublicKey string

var hexKeyRegex = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// NewPublicKey creates and validates a PublicKey.
func NewPublicKey(key string) (PublicKey, error) {
	if key == "" {
		return "", fmt.Errorf("%w: key cannot be empty", ErrInvalidPublicKey)
	}
	if !hexKeyRegex.MatchString(key) {
		return "", fmt.Errorf("%w: must be 64 hex characters", ErrInvalidPublicKey)
	}
	return PublicKey(strings.ToLower(key)), nil
}

// String returns the string representation.
func (k PublicKey) String() string {
	return string(k)
}

// SourceStatus is the lifecycle status of a registered source.
type SourceStatus string

const (
	StatusPending  SourceStatus = "pending"
	StatusActive   SourceStatus = "active"
	StatusInactive SourceStatus = "inactive"
	StatusRevoked  SourceStatus = "revoked"
)

// Source represents a registered data-collection pipeline that reports
// run telemetry for one corpus source.
type Source struct {
	Slug       SourceSlug
	Name       string
	Kind       PipelineKind
	PublicKey  PublicKey
	Status     SourceStatus
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// NewSource creates a new Source with validation.
func NewSource(slug, name, kind, publicKey string) (*Source, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSource)
	}

	s, err := NewSourceSlug(slug)
	if err != nil {
		return nil, err
	}

	k, err := ParsePipelineKind(kind)
	if err != nil {
		return nil, err
	}

	pk, err := NewPublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Source{
		Slug:       s,
		Name:       name,
		Kind:       k,
		PublicKey:  pk,
		Status:     StatusPending,
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

// Activate transitions the source to active. A stale (inactive) source
// reactivates when it reports again; activating an already active source
// is a no-op. Revoked sources stay revoked.
func (s *Source) Activate() error {
	switch s.Status {
	case StatusPending, StatusActive, StatusInactive:
		s.Status = StatusActive
		return nil
	default:
		return fmt.Errorf("%w: cannot activate %s source", ErrInvalidStatusTransition, s.Status)
	}
}

// Revoke permanently revokes the source, preventing further submissions.
func (s *Source) Revoke() error {
	if s.Status == StatusRevoked {
		return fmt.Errorf("%w: source already revoked", ErrInvalidStatusTransition)
	}
	s.Status = StatusRevoked
	return nil
}

// IsRevoked returns true if the source has been revoked.
func (s *Source) IsRevoked() bool {
	return s.Status == StatusRevoked
}

// UpdateHeartbeat marks the source as seen now.
func (s *Source) UpdateHeartbeat() {
	s.LastSeenAt = time.Now().UTC()
}
