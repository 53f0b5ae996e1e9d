package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"taskapi/internal/logger"
)

// RedisRateLimiter is a fixed-window limiter shared by every instance that
// talks to the same Redis. It fails open when Redis errors.
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter connects to addr and pings it. A nil limiter and the
// ping error are returned when Redis is unreachable.
func NewRedisRateLimiter(ctx context.Context, addr, password string, db int) (*RedisRateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisRateLimiter{client: client}, nil
}

func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}

// Limit uses INCR/EXPIRE on rl:<window_seconds>:<route>:<ip>.
func (l *RedisRateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := routeLabel(c)
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + endpoint + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			logger.WithContext(ctx).Warn("rate limiter unavailable", "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			if err := l.client.Expire(ctx, key, window).Err(); err != nil {
				logger.WithContext(ctx).Warn("rate limiter expire failed", "key", key, "error", err)
			}
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": MsgRateLimited})
			return
		}

		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}
