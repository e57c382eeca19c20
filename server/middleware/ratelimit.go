package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures per-client request throttling. Transcription
// requests are expensive, so the default window is deliberately small.
type RateLimitConfig struct {
	// RequestsPerMinute caps requests per key within a sliding minute.
	RequestsPerMinute int
	// KeyFunc derives the throttling key from a request. Defaults to the
	// client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit returns a Gin middleware enforcing a sliding-window limit per
// key. State is in-process; run one replica or accept per-replica limits.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}

	rl := &rateLimiter{
		hits:  make(map[string][]time.Time),
		limit: cfg.RequestsPerMinute,
	}
	go rl.evictLoop()

	return func(c *gin.Context) {
		if !rl.allow(cfg.KeyFunc(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// IPBasedKey keys the limiter on the client IP.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

type rateLimiter struct {
	mu    sync.Mutex
	hits  map[string][]time.Time
	limit int
}

// allow records the hit and reports whether the key is under its limit.
func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := pruneBefore(rl.hits[key], now.Add(-time.Minute))
	if len(recent) >= rl.limit {
		rl.hits[key] = recent
		return false
	}
	rl.hits[key] = append(recent, now)
	return true
}

// evictLoop drops idle keys so the hit map does not grow without bound.
func (rl *rateLimiter) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-time.Minute)
		rl.mu.Lock()
		for key, times := range rl.hits {
			recent := pruneBefore(times, cutoff)
			if len(recent) == 0 {
				delete(rl.hits, key)
				continue
			}
			rl.hits[key] = recent
		}
		rl.mu.Unlock()
	}
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	var recent []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}
