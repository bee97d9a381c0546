// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package elsevier

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

func testRateConfig() types.RateLimitConfig {
	return types.RateLimitConfig{
		MinInterval: 2 * time.Millisecond,
		Multiplier:  2.0,
		Ceiling:     16 * time.Millisecond,
	}
}

func TestLimiterAcquireEnforcesInterval(t *testing.T) {
	l := NewLimiter(testRateConfig())

	require.NoError(t, l.Acquire(context.Background()))
	start := time.Now()
	require.NoError(t, l.Acquire(context.Background()))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 2*time.Millisecond)
	assert.Equal(t, 2, l.Requests())
}

func TestLimiterThrottleEscalates(t *testing.T) {
	l := NewLimiter(testRateConfig())

	assert.Equal(t, 2*time.Millisecond, l.Interval())
	l.Throttle()
	assert.Equal(t, 4*time.Millisecond, l.Interval())
	l.Throttle()
	assert.Equal(t, 8*time.Millisecond, l.Interval())
}

func TestLimiterThrottleCeiling(t *testing.T) {
	l := NewLimiter(testRateConfig())

	for i := 0; i < 10; i++ {
		l.Throttle()
	}
	assert.Equal(t, 16*time.Millisecond, l.Interval())
}

func TestLimiterSuccessResetsInterval(t *testing.T) {
	l := NewLimiter(testRateConfig())

	l.Throttle()
	l.Throttle()
	require.Equal(t, 8*time.Millisecond, l.Interval())

	resp := &http.Response{Header: http.Header{}}
	l.Success(resp)
	assert.Equal(t, 2*time.Millisecond, l.Interval())
}

func TestLimiterReadsQuotaHeaders(t *testing.T) {
	l := NewLimiter(testRateConfig())
	assert.Equal(t, -1, l.Remaining())

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-RateLimit-Remaining", "4321")
	l.Success(resp)
	assert.Equal(t, 4321, l.Remaining())

	// A response without the header keeps the last known value.
	l.Success(&http.Response{Header: http.Header{}})
	assert.Equal(t, 4321, l.Remaining())
}

func TestLimiterAcquireContextCancelled(t *testing.T) {
	cfg := testRateConfig()
	cfg.MinInterval = 500 * time.Millisecond
	l := NewLimiter(cfg)

	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiterDefaults(t *testing.T) {
	l := NewLimiter(types.RateLimitConfig{})
	assert.Equal(t, defaultMinInterval, l.Interval())

	l.Throttle()
	assert.Equal(t, 2*defaultMinInterval, l.Interval())
}
