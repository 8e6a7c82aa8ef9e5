package pocketbase

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// MaxRetryAfter caps a Retry-After hint so retries stay bounded.
const MaxRetryAfter = 60 * time.Second

// RateLimiter combines a proactive token bucket with the backend's
// Retry-After hints.
type RateLimiter struct {
	bucket *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
}

// NewRateLimiter allows perSecond requests per second. Zero or less disables
// the bucket; Retry-After pauses still apply.
func NewRateLimiter(perSecond int) *RateLimiter {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = perSecond
	}
	return &RateLimiter{bucket: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	until := r.pausedUntil
	r.mu.Unlock()

	if wait := time.Until(until); wait > 0 {
		return sleepContext(ctx, wait)
	}
	return ctx.Err()
}

// Pause holds all requests for d, extending any pause already in effect.
func (r *RateLimiter) Pause(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(d); until.After(r.pausedUntil) {
		r.pausedUntil = until
	}
}

// PausedUntil returns the end of the current pause.
func (r *RateLimiter) PausedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pausedUntil
}

// ParseRetryAfter interprets a Retry-After value given in seconds or as an
// HTTP date, capped at MaxRetryAfter. Invalid or past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	var d time.Duration
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		if seconds > int(MaxRetryAfter/time.Second) {
			return MaxRetryAfter
		}
		d = time.Duration(seconds) * time.Second
	} else if at, err := http.ParseTime(value); err == nil && at.After(now) {
		d = at.Sub(now)
	}
	return min(d, MaxRetryAfter)
}
