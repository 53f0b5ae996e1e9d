package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// MsgRateLimited is the error body of a rejected request.
const MsgRateLimited = "rate limit exceeded"

type clientInfo struct {
	start time.Time
	count int
}

// MemoryRateLimiter is a per-process fixed-window limiter keyed by route and
// client IP. It is used when Redis is not configured.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{clients: make(map[string]*clientInfo), now: time.Now}
}

// allow counts one request for key and reports whether it is within max.
func (l *MemoryRateLimiter) allow(key string, max int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) >= window {
		l.clients[key] = &clientInfo{start: now, count: 1}
		l.sweep(now, window)
		return max >= 1
	}
	ci.count++
	return ci.count <= max
}

// sweep drops expired windows so the map does not grow without bound.
func (l *MemoryRateLimiter) sweep(now time.Time, window time.Duration) {
	for k, ci := range l.clients {
		if now.Sub(ci.start) >= window {
			delete(l.clients, k)
		}
	}
}

// Limit blocks clients that send more than maxRequests per window.
func (l *MemoryRateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := routeLabel(c)
		if !l.allow(endpoint+"|"+c.ClientIP(), maxRequests, window) {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": MsgRateLimited})
			return
		}
		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}
