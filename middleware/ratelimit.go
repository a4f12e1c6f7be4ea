package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateLimiter struct {
	requests map[string]*clientRequest
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

type clientRequest struct {
	count     int
	resetTime time.Time
}

var limiter = newRateLimiter(120, time.Minute)

func init() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.cleanup()
		}
	}()
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		requests: make(map[string]*clientRequest),
		limit:    limit,
		window:   window,
	}
}

// allow admits or rejects one request for the client, returning how long
// the client must wait when rejected.
func (rl *rateLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, exists := rl.requests[ip]
	if !exists || now.After(client.resetTime) {
		rl.requests[ip] = &clientRequest{
			count:     1,
			resetTime: now.Add(rl.window),
		}
		return true, 0
	}

	if client.count >= rl.limit {
		return false, client.resetTime.Sub(now)
	}

	client.count++
	return true, 0
}

// middleware takes the admit decision under the lock and releases it before
// the rest of the chain runs, so slow handlers never serialize behind it.
func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.allow(c.ClientIP(), time.Now())
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiter caps requests per client IP per minute.
func RateLimiter() gin.HandlerFunc {
	return limiter.middleware()
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, client := range rl.requests {
		if now.After(client.resetTime) {
			delete(rl.requests, ip)
		}
	}
}
