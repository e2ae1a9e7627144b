// SPDX-License-Identifier: MIT

// Package golang is the reporter SDK that collection pipelines embed to
// send run telemetry to a corpuswatch server.
package golang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/somcorpus/corpuswatch/pkg/crypto"
)

// Config configures a pipeline reporter.
type Config struct {
	ServerURL      string
	SourceName     string        // display name, e.g. "Wikipedia-Somali"
	SourceSlug     string        // optional; derived from SourceName when empty
	Kind           string        // web-fetch, file-processing or streaming
	DataDir        string        // where the identity file is stored
	Enabled        bool
	ReportInterval time.Duration // periodic report interval (default: 1h)
}

// TelemetryProvider returns the current run statistics to report.
type TelemetryProvider func() map[string]interface{}

// Client reports pipeline runs to a corpuswatch server.
type Client struct {
	config   Config
	identity *Identity
	provider TelemetryProvider
	client   *http.Client
}

// New creates a Client, loading or generating its signing identity.
func New(cfg Config) (*Client, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.SourceSlug == "" {
		cfg.SourceSlug = slug(cfg.SourceName)
	}

	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 1 * time.Hour
	} else if cfg.ReportInterval < time.Minute {
		cfg.ReportInterval = time.Minute
	}

	ensureDataDir(cfg.DataDir)
	idPath := cfg.DataDir + "/" + cfg.SourceSlug + "_corpuswatch_identity.json"
	id, err := loadOrGenerateIdentity(idPath, cfg.SourceSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to init identity: %w", err)
	}

	return &Client{
		config:   cfg,
		identity: id,
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// SetProvider sets the callback used by the periodic reporting loop.
func (c *Client) SetProvider(p TelemetryProvider) {
	c.provider = p
}

// Start registers and activates the source, then reports periodically
// until the context is cancelled.
func (c *Client) Start(ctx context.Context) {
	if !c.config.Enabled {
		log.Println("[corpuswatch] Telemetry disabled")
		return
	}

	if err := c.Register(); err != nil {
		log.Printf("[corpuswatch] Register warning: %v", err)
	}

	if err := c.Activate(); err != nil {
		log.Printf("[corpuswatch] Activation failed: %v", err)
	}

	ticker := time.NewTicker(c.config.ReportInterval)
	defer ticker.Stop()

	c.reportFromProvider()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.reportFromProvider()
		}
	}
}

// Register announces the source and its public key to the server.
func (c *Client) Register() error {
	req := RegisterRequest{
		Slug:      c.config.SourceSlug,
		Name:      c.config.SourceName,
		Kind:      c.config.Kind,
		PublicKey: c.identity.PublicKey,
	}

	body, _ := json.Marshal(req)
	resp, err := c.client.Post(c.config.ServerURL+"/v1/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	log.Printf("[corpuswatch] Source registered: %s", c.config.SourceSlug)
	return nil
}

// Activate proves key ownership to transition the source to active.
func (c *Client) Activate() error {
	payload := map[string]string{"action": "activate"}
	body, _ := json.Marshal(payload)

	resp, err := c.signedPost("/v1/activate", body)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("activation failed: code %d", resp.StatusCode)
	}

	log.Printf("[corpuswatch] Source activated")
	return nil
}

// Report sends a single run report with the given statistics.
func (c *Client) Report(stats map[string]interface{}) error {
	payloadJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	req := TelemetryRequest{
		SourceSlug: c.config.SourceSlug,
		Timestamp:  time.Now().UTC(),
		Payload:    payloadJSON,
	}
	body, _ := json.Marshal(req)

	resp, err := c.signedPost("/v1/telemetry", body)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("telemetry rejected: code %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) reportFromProvider() {
	if c.provider == nil {
		return
	}
	if err := c.Report(c.provider()); err != nil {
		log.Printf("[corpuswatch] Failed to send report: %v", err)
	}
}

func (c *Client) signedPost(path string, body []byte) (*http.Response, error) {
	signature, err := crypto.SignHex(c.identity.PrivateKey, body)
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	req, err := http.NewRequest("POST", c.config.ServerURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Source-ID", c.config.SourceSlug)
	req.Header.Set("X-Signature", signature)

	return c.client.Do(req)
}

func ensureDataDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0755)
	}
}

func slug(s string) string {
	s = strings.ToLower(s)

	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' || r == '.' {
			result.WriteRune('-')
		}
	}

	cleaned := strings.Trim(result.String(), "-")
	for strings.Contains(cleaned, "--") {
		cleaned = strings.ReplaceAll(cleaned, "--", "-")
	}

	if cleaned == "" {
		return "source"
	}

	return cleaned
}
