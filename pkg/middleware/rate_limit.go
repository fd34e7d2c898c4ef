package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/memory"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/response"
)

// RateLimiter is a fixed-window limiter keyed by session, falling back to client IP.
type RateLimiter struct {
	buckets *memory.Cache[*bucket]
	rate    int
	window  time.Duration
	now     func() time.Time
}

type bucket struct {
	mu        sync.Mutex
	tokens    int
	lastReset time.Time
}

// NewRateLimiter allows rate requests per window. Idle keys are swept after
// a few windows.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: memory.New[*bucket](4*window, window),
		rate:    rate,
		window:  window,
		now:     time.Now,
	}
}

// Close stops the background sweep.
func (rl *RateLimiter) Close() {
	rl.buckets.Close()
}

// Middleware returns a Gin middleware that enforces the limit. A non-positive
// rate disables limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if id := SessionID(c); id != "" {
			key = "session:" + id
		}

		if !rl.allow(key) {
			response.Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.", gin.H{"code": "rate_limited"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	b := rl.buckets.GetOrCreate(key, func() *bucket {
		return &bucket{tokens: rl.rate, lastReset: rl.now()}
	})

	b.mu.Lock()
	defer b.mu.Unlock()

	if rl.now().Sub(b.lastReset) > rl.window {
		b.tokens = rl.rate
		b.lastReset = rl.now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}
