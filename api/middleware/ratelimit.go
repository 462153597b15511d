package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/segubroker/cotizador/config"
	"github.com/segubroker/cotizador/models"
)

// Idle buckets are garbage-collected so one-off callers do not accumulate
// limiter state forever.
const (
	bucketTTL     = time.Hour
	sweepInterval = 5 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns per-caller token-bucket rate limiting. The caller
// identity is the authenticated API key when one is set, otherwise the
// client IP. Every quote request costs a full browser launch, which is why
// the configured bucket is small.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)

	take := func(identity string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		b, ok := buckets[identity]
		if !ok {
			b = &bucket{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
			buckets[identity] = b
		}
		b.lastSeen = time.Now()
		return b.limiter
	}

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-bucketTTL)
			mu.Lock()
			for id, b := range buckets {
				if b.lastSeen.Before(cutoff) {
					delete(buckets, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		identity, ok := c.Get(identityKey)
		if !ok {
			identity = c.ClientIP()
		}

		if !take(identity.(string)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.QuoteResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded for this API key or IP",
				},
			})
			return
		}

		c.Next()
	}
}
