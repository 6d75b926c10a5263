package api

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const maxTrackedLimiterKeys = 4096

// attemptLimiter remembers the last limit failure times per key. A key is
// blocked while its oldest remembered failure is still inside the window,
// which is a sliding window without keeping more than limit timestamps.
type attemptLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	failures map[string][]time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:    limit,
		window:   window,
		failures: make(map[string][]time.Time),
	}
}

func (limiter *attemptLimiter) blocked(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	recent := limiter.failures[key]
	return len(recent) >= limiter.limit && now.Sub(recent[0]) < limiter.window
}

func (limiter *attemptLimiter) addFailure(key string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	if _, tracked := limiter.failures[key]; !tracked && len(limiter.failures) >= maxTrackedLimiterKeys {
		limiter.sweepLocked(now)
		if len(limiter.failures) >= maxTrackedLimiterKeys {
			return
		}
	}

	recent := append(limiter.failures[key], now)
	if len(recent) > limiter.limit {
		recent = recent[len(recent)-limiter.limit:]
	}
	limiter.failures[key] = recent
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.failures, key)
}

// sweepLocked forgets keys whose newest failure left the window.
func (limiter *attemptLimiter) sweepLocked(now time.Time) {
	for key, recent := range limiter.failures {
		if now.Sub(recent[len(recent)-1]) >= limiter.window {
			delete(limiter.failures, key)
		}
	}
}

func requestLimiterKey(c *fiber.Ctx) string {
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}
