// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import "errors"

// Sentinel errors for the domain layer.
// Use errors.Is() to check for these errors.
// Wrap with fmt.Errorf("context: %w", ErrXxx) to add context.

var (
	// Source errors
	ErrSourceNotFound          = errors.New("source not found")
	ErrSourceRevoked           = errors.New("source is revoked")
	ErrInvalidSourceSlug       = errors.New("invalid source slug")
	ErrInvalidPipelineKind     = errors.New("invalid pipeline kind")
	ErrInvalidPublicKey        = errors.New("invalid public key")
	ErrInvalidSource           = errors.New("invalid source")
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// Record errors
	ErrInvalidRecord  = errors.New("invalid record")
	ErrInvalidPayload = errors.New("invalid payload")

	// Authentication errors
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMissingSignature = errors.New("missing signature")
)
