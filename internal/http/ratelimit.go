package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count int
	start time.Time
}

// MemoryLimiter is a per-process fixed window counter.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	rate    int
	period  time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(rate int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window), rate: rate, period: period, now: time.Now}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.windows[key] = &window{count: 1, start: now}
		rl.gc(now)
		return true, nil
	}
	if w.count < rl.rate {
		w.count++
		return true, nil
	}
	return false, nil
}

// gc drops expired windows once the map grows; called with mu held.
func (rl *MemoryLimiter) gc(now time.Time) {
	if len(rl.windows) < 10000 {
		return
	}
	for k, w := range rl.windows {
		if now.Sub(w.start) >= rl.period {
			delete(rl.windows, k)
		}
	}
}

// RedisLimiter shares a fixed window across processes. The window key is created with its
// TTL and incremented in one MULTI, so a counter never outlives its period.
type RedisLimiter struct {
	C      *redis.Client
	Rate   int
	Period time.Duration
	Prefix string
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := rl.Prefix + key
	var n *redis.IntCmd
	_, err := rl.C.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetNX(ctx, k, 0, rl.Period)
		n = p.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return false, err
	}
	return n.Val() <= int64(rl.Rate), nil
}

func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil && host != "" {
		return host
	}
	return ip
}

// RateLimit answers 429 once the caller's IP exceeds the limiter for scope. Limiter errors
// let the request through.
func RateLimit(l Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		ok, err := l.Allow(c.Request.Context(), scope+":"+ClientIP(c))
		if err != nil {
			log.WithDD(c.Request.Context(), log.L()).Warn("rate limiter unavailable",
				zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
