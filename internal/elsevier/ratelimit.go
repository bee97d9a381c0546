// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package elsevier talks to the Elsevier developer APIs: ScienceDirect and
// Scopus search, PlumX analytics, and object retrieval. It owns request
// construction, authentication headers, rate limiting, and the retry policy
// shared by every stage.
package elsevier

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// Rate limit defaults.
const (
	defaultMinInterval = 1 * time.Second
	defaultMultiplier  = 2.0
	defaultCeiling     = 2 * time.Minute
)

// Limiter paces outbound requests. It enforces a minimum interval between
// successive calls and escalates that interval multiplicatively whenever
// the provider throttles, up to a ceiling. A Limiter is an explicit
// instance threaded through the fetcher, not a process-wide singleton, so
// independent pipelines can carry independent quota state.
type Limiter struct {
	mu sync.Mutex

	min        time.Duration
	interval   time.Duration
	multiplier float64
	ceiling    time.Duration

	last         time.Time
	requests     int
	throttles    int
	lastThrottle time.Time

	// remaining mirrors the provider's X-RateLimit-Remaining header;
	// -1 when the provider has not reported it.
	remaining int

	// now is a test seam.
	now func() time.Time
}

// NewLimiter builds a Limiter from cfg, applying defaults for zero values.
func NewLimiter(cfg types.RateLimitConfig) *Limiter {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = defaultMultiplier
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = defaultCeiling
	}
	return &Limiter{
		min:        cfg.MinInterval,
		interval:   cfg.MinInterval,
		multiplier: cfg.Multiplier,
		ceiling:    cfg.Ceiling,
		remaining:  -1,
		now:        time.Now,
	}
}

// Acquire blocks until the current interval has elapsed since the previous
// request, then records the request. It returns ctx.Err() if the context
// is cancelled during the wait.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	wait := l.interval - l.now().Sub(l.last)
	l.mu.Unlock()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	l.mu.Lock()
	l.last = l.now()
	l.requests++
	l.mu.Unlock()
	return nil
}

// Throttle records a throttling signal and escalates the interval.
func (l *Limiter) Throttle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.throttles++
	l.lastThrottle = l.now()

	escalated := time.Duration(float64(l.interval) * l.multiplier)
	if escalated > l.ceiling {
		escalated = l.ceiling
	}
	l.interval = escalated
}

// Success resets the interval to the minimum and records the quota headers
// the provider sends on successful responses.
func (l *Limiter) Success(resp *http.Response) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.interval = l.min
	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			l.remaining = n
		}
	}
}

// Interval returns the currently enforced delay between requests.
func (l *Limiter) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

// Requests returns the number of requests issued through this Limiter.
func (l *Limiter) Requests() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.requests
}

// Remaining returns the provider-reported remaining quota, or -1 if the
// provider has not reported one.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}
