// Package middleware provides HTTP middleware for the feedback API.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"feedbackapp/internal/config"
)

// RateLimiter stores per-IP limiters for the intake endpoint
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	mutex    sync.Mutex

	limit rate.Limit
	burst int
}

// NewRateLimiter creates a rate limiter with a per-minute budget and burst size
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = config.DefaultRateLimitPerMinute
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

// GetLimiter returns the limiter for the given IP, creating one if needed
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	limiter, exists := rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[ip] = limiter
	}
	rl.lastSeen[ip] = time.Now()
	return limiter
}

// Cleanup removes limiters for IPs not seen within the idle window
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for ip, t := range rl.lastSeen {
		if now.Sub(t) > idle {
			delete(rl.limiters, ip)
			delete(rl.lastSeen, ip)
		}
	}
}

// Middleware enforces the per-IP budget, responding 429 with a fixed message
// when it is exhausted
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.GetLimiter(c.ClientIP())
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// StartCleanup evicts idle limiters periodically until the stop channel closes
func (rl *RateLimiter) StartCleanup(stop <-chan struct{}) {
	go rl.cleanupLoop(config.RateLimiterIdleEviction, stop)
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.Cleanup(config.RateLimiterIdleEviction)
		case <-stop:
			return
		}
	}
}
