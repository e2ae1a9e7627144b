// SPDX-License-Identifier: AGPL-3.0-or-later

// Package crypto implements the ed25519 signing scheme used to
// authenticate telemetry submissions. Sources hold a keypair; keys and
// signatures travel as hex strings (identity files, registration
// payloads, X-Signature headers).
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateKeypair creates a new source signing keypair.
func GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// Sign signs a request body and returns the hex-encoded signature.
func Sign(privateKey ed25519.PrivateKey, message []byte) string {
	return hex.EncodeToString(ed25519.Sign(privateKey, message))
}

// SignHex signs a request body with a hex-encoded private key, as stored
// in a source identity file.
func SignHex(privateKeyHex string, message []byte) (string, error) {
	key, ok := decodeHex(privateKeyHex, ed25519.PrivateKeySize)
	if !ok {
		return "", fmt.Errorf("invalid private key")
	}
	return Sign(key, message), nil
}

// Verify checks a hex-encoded signature against a hex-encoded public
// key. Malformed or wrong-sized inputs verify as false rather than
// erroring; callers treat any failure as an authentication failure.
func Verify(pubKeyHex string, message []byte, signatureHex string) bool {
	pubKey, ok := decodeHex(pubKeyHex, ed25519.PublicKeySize)
	if !ok {
		return false
	}
	sig, ok := decodeHex(signatureHex, ed25519.SignatureSize)
	if !ok {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), message, sig)
}

func decodeHex(s string, wantLen int) ([]byte, bool) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != wantLen {
		return nil, false
	}
	return b, true
}
