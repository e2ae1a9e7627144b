// SPDX-License-Identifier: AGPL-3.0-or-later

// Package middleware provides transport-agnostic HTTP middleware.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/somcorpus/corpuswatch/internal/config"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // Unix nano timestamp for thread-safe access
}

// RateLimiter applies per-IP and per-source token bucket limits.
type RateLimiter struct {
	config config.RateLimitConfig
	logger *slog.Logger

	ipLimiters        sync.Map // IP -> limiterEntry (for register)
	sourceLimiters    sync.Map // Source slug -> limiterEntry (for telemetry)
	analyticsLimiters sync.Map // IP -> limiterEntry (for analytics reads)

	stopCleanup chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its cleanup loop when enabled.
func NewRateLimiter(cfg config.RateLimitConfig, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	rl := &RateLimiter{
		config:      cfg,
		logger:      logger,
		stopCleanup: make(chan struct{}),
	}

	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}

	return rl
}

// Stop terminates the cleanup loop.
func (rl *RateLimiter) Stop() {
	close(rl.stopCleanup)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	threshold := time.Now().Add(-rl.config.CleanupInterval * 2).UnixNano()

	cleanupMap := func(m *sync.Map) int {
		count := 0
		m.Range(func(key, value interface{}) bool {
			if entry, ok := value.(*limiterEntry); ok {
				if entry.lastSeen.Load() < threshold {
					m.Delete(key)
					count++
				}
			}
			return true
		})
		return count
	}

	total := cleanupMap(&rl.ipLimiters) + cleanupMap(&rl.sourceLimiters) + cleanupMap(&rl.analyticsLimiters)
	if total > 0 {
		rl.logger.Debug("rate limiter cleanup", "removed", total)
	}
}

func (rl *RateLimiter) getLimiter(store *sync.Map, key string, cfg config.RateLimitRouteConfig) *rate.Limiter {
	nowNano := time.Now().UnixNano()
	rateLimit := rate.Limit(float64(cfg.Requests) / cfg.Period.Seconds())

	if existing, ok := store.Load(key); ok {
		entry := existing.(*limiterEntry)
		entry.lastSeen.Store(nowNano)
		return entry.limiter
	}

	limiter := rate.NewLimiter(rateLimit, cfg.Burst)
	entry := &limiterEntry{
		limiter: limiter,
	}
	entry.lastSeen.Store(nowNano)

	actual, _ := store.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			xff = xff[:idx]
		}
		xff = strings.TrimSpace(xff)
		if xff != "" {
			return xff
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeRateLimitHeaders(w http.ResponseWriter, limiter *rate.Limiter, cfg config.RateLimitRouteConfig) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))

	tokens := int(limiter.Tokens())
	if tokens < 0 {
		tokens = 0
	}
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(tokens))

	resetTime := time.Now().Add(cfg.Period).Unix()
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))
}

func writeTooManyRequests(w http.ResponseWriter, limiter *rate.Limiter, cfg config.RateLimitRouteConfig) {
	writeRateLimitHeaders(w, limiter, cfg)

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()

	retryAfter := int(delay.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
}

// RegisterMiddleware limits registration attempts per client IP.
func (rl *RateLimiter) RegisterMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next(w, r)
			return
		}

		ip := getClientIP(r)
		limiter := rl.getLimiter(&rl.ipLimiters, ip, rl.config.Register)

		if !limiter.Allow() {
			rl.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			writeTooManyRequests(w, limiter, rl.config.Register)
			return
		}

		writeRateLimitHeaders(w, limiter, rl.config.Register)
		next(w, r)
	}
}

// TelemetryMiddleware limits run report submissions per source.
func (rl *RateLimiter) TelemetryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next(w, r)
			return
		}

		slug := r.Header.Get("X-Source-ID")
		if slug == "" {
			next(w, r)
			return
		}

		limiter := rl.getLimiter(&rl.sourceLimiters, slug, rl.config.Telemetry)

		if !limiter.Allow() {
			rl.logger.Warn("rate limit exceeded", "source", slug, "path", r.URL.Path)
			writeTooManyRequests(w, limiter, rl.config.Telemetry)
			return
		}

		writeRateLimitHeaders(w, limiter, rl.config.Telemetry)
		next(w, r)
	}
}

// AnalyticsMiddleware limits analytics reads per client IP.
func (rl *RateLimiter) AnalyticsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next(w, r)
			return
		}

		ip := getClientIP(r)
		limiter := rl.getLimiter(&rl.analyticsLimiters, ip, rl.config.Analytics)

		if !limiter.Allow() {
			rl.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			writeTooManyRequests(w, limiter, rl.config.Analytics)
			return
		}

		writeRateLimitHeaders(w, limiter, rl.config.Analytics)
		next(w, r)
	}
}
