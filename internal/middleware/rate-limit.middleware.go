package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/constant"
)

const bucketTTL = 5 * time.Minute

// RateLimiter is a token bucket per client IP: RateLimitMax requests per
// RateLimitWindow, refilled evenly. Idle buckets are dropped after bucketTTL.
type RateLimiter struct {
	config *MiddlewareConfig
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	stop     chan struct{}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(config *MiddlewareConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if config.RateLimitEnabled {
		go rl.cleanup()
	}
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) > bucketTTL {
			delete(rl.buckets, k)
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		limit := rl.config.RateLimitMax
		every := rl.config.RateLimitWindow / time.Duration(limit)
		b = &bucket{lim: rate.NewLimiter(rate.Every(every), limit)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.config.RateLimitEnabled || rl.config.RateLimitMax <= 0 {
			c.Next()
			return
		}

		if !rl.allow(getClientIP(c)) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apperror.NewErrorResponse(http.StatusTooManyRequests, constant.MsgTooManyRequests))
			return
		}
		c.Next()
	}
}
