package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, config *Config) (*Limiter, *fakeClock) {
	t.Helper()
	config.CleanupInterval = 0
	limiter := NewLimiter(config)
	clock := newFakeClock()
	limiter.now = clock.Now
	t.Cleanup(limiter.Stop)
	return limiter, clock
}

func TestBucket_TakeAndRefill(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(3, 1.0, clock.Now())

	for i := 0; i < 3; i++ {
		allowed, _, _ := b.take(clock.Now())
		assert.True(t, allowed, "request %d", i+1)
	}
	allowed, remaining, reset := b.take(clock.Now())
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, clock.Now().Add(3*time.Second), reset)
	assert.Equal(t, time.Second, b.nextToken())

	clock.Advance(time.Second)
	allowed, _, _ = b.take(clock.Now())
	assert.True(t, allowed)
}

func TestBucket_NeverExceedsCapacity(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(2, 1.0, clock.Now())

	clock.Advance(time.Hour)
	_, remaining, _ := b.take(clock.Now())
	assert.Equal(t, 1, remaining)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute})

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/items", "GET")
		require.True(t, allowed)
		assert.Equal(t, 5, info.Limit)
		assert.Equal(t, 4-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/items", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 12*time.Second, info.RetryAfter)

	allowed, _ = limiter.Allow("10.0.0.2", "/items", "GET")
	assert.True(t, allowed, "clients have separate buckets")
}

func TestLimiter_AnalyzeLimit(t *testing.T) {
	limiter, clock := newTestLimiter(t, NewConfig(true, 600, 60, nil))

	// 60 per hour with a burst of 6
	for i := 0; i < 6; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/analyze", "POST")
		require.True(t, allowed)
	}
	allowed, info := limiter.Allow("127.0.0.1", "/analyze", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 60, info.Limit)
	assert.Equal(t, time.Minute, info.RetryAfter)

	allowed, _ = limiter.Allow("127.0.0.1", "/items", "GET")
	assert.True(t, allowed, "other routes use the default limit")

	clock.Advance(2 * time.Minute)
	allowed, _ = limiter.Allow("127.0.0.1", "/analyze", "POST")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	config := NewConfig(true, 1, 1, []string{"127.0.0.1"})
	config.Blacklist = ParseIPList("10.0.0.9")
	limiter, _ := newTestLimiter(t, config)

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/analyze", "POST")
		assert.True(t, allowed)
	}

	allowed, _ := limiter.Allow("10.0.0.9", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(t, NewConfig(false, 1, 1, nil))

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/analyze", "POST")
		assert.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("127.0.0.1", "/items", "POST"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), allowed.Load())
}

func TestLimiter_Cleanup(t *testing.T) {
	config := &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Hour}
	limiter, clock := newTestLimiter(t, config)

	limiter.Allow("a", "/items", "GET")
	clock.Advance(30 * time.Minute)
	limiter.Allow("b", "/items", "GET")
	require.Equal(t, 2, limiter.size())

	clock.Advance(45 * time.Minute)
	limiter.cleanup()
	assert.Equal(t, 1, limiter.size())
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/analyze", Method: "POST", Limit: 1},
		{Path: "/items/", Method: "DELETE", Limit: 2},
	}

	assert.Equal(t, 1, MatchEndpoint("/analyze", "POST", configs).Limit)
	assert.Equal(t, 2, MatchEndpoint("/items/abc", "DELETE", configs).Limit)
	assert.Nil(t, MatchEndpoint("/analyze", "GET", configs))
	assert.Nil(t, MatchEndpoint("/items", "DELETE", configs))
	assert.Equal(t, 0, MatchEndpoint("/health", "GET", configs).Limit)
}

func TestParseIPList(t *testing.T) {
	assert.Equal(t, map[string]bool{"1.1.1.1": true, "2.2.2.2": true}, ParseIPList(" 1.1.1.1, ,2.2.2.2"))
	assert.Empty(t, ParseIPList(""))
}
