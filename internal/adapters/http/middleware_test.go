// SPDX-License-Identifier: AGPL-3.0-or-later

package http

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/somcorpus/corpuswatch/pkg/crypto"
)

type staticKeyProvider struct {
	key string
	err error
}

func (p *staticKeyProvider) GetPublicKey(ctx context.Context, sourceSlug string) (string, error) {
	return p.key, p.err
}

func TestRequireSignature(t *testing.T) {
	pub, priv, _ := crypto.GenerateKeypair()
	pubHex := hex.EncodeToString(pub)
	body := []byte(`{"recordsWritten": 1000}`)

	newRequest := func(slug, signature string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v1/telemetry", bytes.NewReader(body))
		if slug != "" {
			req.Header.Set("X-Source-ID", slug)
		}
		if signature != "" {
			req.Header.Set("X-Signature", signature)
		}
		return req
	}

	t.Run("valid signature passes and body survives", func(t *testing.T) {
		mw := NewAuthMiddleware(&staticKeyProvider{key: pubHex}, testLogger())

		var seenBody []byte
		handler := mw.RequireSignature(func(w http.ResponseWriter, r *http.Request) {
			seenBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		handler(rec, newRequest("wikipedia-somali", crypto.Sign(priv, body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !bytes.Equal(seenBody, body) {
			t.Error("downstream handler should see the original body")
		}
	})

	t.Run("missing headers", func(t *testing.T) {
		mw := NewAuthMiddleware(&staticKeyProvider{key: pubHex}, testLogger())
		handler := mw.RequireSignature(okNoop)

		rec := httptest.NewRecorder()
		handler(rec, newRequest("", ""))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		handler(rec, newRequest("wikipedia-somali", ""))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401 without signature, got %d", rec.Code)
		}
	})

	t.Run("key lookup failure", func(t *testing.T) {
		mw := NewAuthMiddleware(&staticKeyProvider{err: errors.New("revoked")}, testLogger())
		handler := mw.RequireSignature(okNoop)

		rec := httptest.NewRecorder()
		handler(rec, newRequest("wikipedia-somali", crypto.Sign(priv, body)))
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", rec.Code)
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		mw := NewAuthMiddleware(&staticKeyProvider{key: pubHex}, testLogger())
		handler := mw.RequireSignature(okNoop)

		rec := httptest.NewRecorder()
		handler(rec, newRequest("wikipedia-somali", crypto.Sign(priv, []byte("other body"))))
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", rec.Code)
		}
	})
}

func okNoop(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
