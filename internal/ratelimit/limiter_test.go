package ratelimit

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestLimiter_WindowKey(t *testing.T) {
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	limiter := NewLimiterWithClock(nil, 60, time.Minute, clock)

	key := limiter.windowKey("203.0.113.7", "users_write", clock.Now())

	// requests inside the same window share a key
	clock.Advance(30 * time.Second)
	assert.Equal(t, key, limiter.windowKey("203.0.113.7", "users_write", clock.Now()))

	// the next window gets a fresh key
	clock.Advance(30 * time.Second)
	assert.NotEqual(t, key, limiter.windowKey("203.0.113.7", "users_write", clock.Now()))

	// different IPs and purposes never collide
	assert.NotEqual(t, key, limiter.windowKey("198.51.100.1", "users_write", start))
	assert.NotEqual(t, key, limiter.windowKey("203.0.113.7", "other", start))
}
