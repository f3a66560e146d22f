package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/adityarizkyr/eventbook/internal/helpers"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// maxLimiterIdle is how long a client IP may stay quiet before its bucket
// is evicted, keeping the limiter map bounded.
const maxLimiterIdle = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func evictStale(limiters map[string]*ipLimiter, now time.Time, maxIdle time.Duration) {
	for ip, entry := range limiters {
		if now.Sub(entry.lastSeen) > maxIdle {
			delete(limiters, ip)
		}
	}
}

// RateLimitMiddleware applies a per-client-IP token bucket. It is mounted on
// the auth endpoints to slow down credential stuffing; the rest of the API
// is unlimited. Idle buckets are evicted periodically so the map does not
// grow with every IP ever seen.
func RateLimitMiddleware(r rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*ipLimiter)
	)

	go func() {
		ticker := time.NewTicker(maxLimiterIdle)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			evictStale(limiters, time.Now(), maxLimiterIdle)
			mu.Unlock()
		}
	}()

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		entry, ok := limiters[ip]
		if !ok {
			entry = &ipLimiter{limiter: rate.NewLimiter(r, burst)}
			limiters[ip] = entry
		}
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			helpers.RespondWithError(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
