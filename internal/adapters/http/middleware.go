// SPDX-License-Identifier: AGPL-3.0-or-later

package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/somcorpus/corpuswatch/internal/app"
	"github.com/somcorpus/corpuswatch/pkg/crypto"
)

// KeyProvider is an interface for retrieving public keys for signature verification.
type KeyProvider interface {
	GetPublicKey(ctx context.Context, sourceSlug string) (string, error)
}

// AuthMiddleware provides Ed25519 signature verification for requests.
type AuthMiddleware struct {
	keys   KeyProvider
	logger *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(keys KeyProvider, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		keys:   keys,
		logger: logger,
	}
}

// NewAuthMiddlewareFromService creates an AuthMiddleware using a SourceService.
func NewAuthMiddlewareFromService(svc *app.SourceService, logger *slog.Logger) *AuthMiddleware {
	return NewAuthMiddleware(&sourceServiceKeyProvider{svc: svc}, logger)
}

// sourceServiceKeyProvider adapts SourceService to KeyProvider.
type sourceServiceKeyProvider struct {
	svc *app.SourceService
}

func (p *sourceServiceKeyProvider) GetPublicKey(ctx context.Context, sourceSlug string) (string, error) {
	return p.svc.GetPublicKey(ctx, sourceSlug)
}

// RequireSignature wraps a handler to require a valid Ed25519 signature.
// The request must have X-Source-ID and X-Signature headers. The signature
// is verified against the request body using the source's public key.
func (m *AuthMiddleware) RequireSignature(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.Header.Get("X-Source-ID")
		signature := r.Header.Get("X-Signature")

		m.logger.Debug("auth attempt", "slug", slug)

		if slug == "" || signature == "" {
			m.logger.Warn("missing auth headers",
				"slug", slug,
				"has_signature", signature != "",
			)
			http.Error(w, "Missing authentication headers", http.StatusUnauthorized)
			return
		}

		// Read and buffer the body for verification
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			m.logger.Error("failed to read body", "slug", slug, "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		// Restore the body for downstream handlers
		r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		pubKey, err := m.keys.GetPublicKey(r.Context(), slug)
		if err != nil {
			m.logger.Warn("key lookup failed", "slug", slug, "error", err)
			http.Error(w, "Unauthorized", http.StatusForbidden)
			return
		}

		if !crypto.Verify(pubKey, bodyBytes, signature) {
			m.logger.Warn("invalid signature", "slug", slug)
			http.Error(w, "Invalid signature", http.StatusForbidden)
			return
		}

		m.logger.Debug("auth success", "slug", slug)
		next(w, r)
	}
}
