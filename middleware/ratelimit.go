package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"friendzone/apperr"
	"friendzone/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RateResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (RateResult, error)
}

// MemoryLimiter is a per-key sliding window kept in process.
type MemoryLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
	swept    time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (RateResult, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	if now.Sub(rl.swept) >= rl.window {
		rl.sweep(cutoff)
		rl.swept = now
	}

	requests := rl.requests[key]
	i := 0
	for ; i < len(requests); i++ {
		if requests[i].After(cutoff) {
			break
		}
	}
	requests = requests[i:]

	res := RateResult{Limit: rl.limit}
	if len(requests) > 0 {
		res.Reset = requests[0].Add(rl.window).Sub(now)
	} else {
		res.Reset = rl.window
	}

	if len(requests) >= rl.limit {
		rl.requests[key] = requests
		return res, nil
	}

	rl.requests[key] = append(requests, now)
	res.Allowed = true
	res.Remaining = rl.limit - len(rl.requests[key])
	return res, nil
}

// sweep drops keys whose newest request is outside the window.
func (rl *MemoryLimiter) sweep(cutoff time.Time) {
	for key, requests := range rl.requests {
		if len(requests) == 0 || !requests[len(requests)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// Atomic INCR that sets the expiry on the first hit of a window.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter is a fixed-window counter shared by every instance that
// uses the same Redis.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (RateResult, error) {
	vals, err := incrExpireScript.Run(ctx, rl.rdb, []string{rl.prefix + key}, rl.window.Milliseconds()).Int64Slice()
	if err != nil {
		return RateResult{}, err
	}
	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	if ttl < 0 {
		ttl = rl.window
	}
	remaining := rl.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return RateResult{
		Allowed:   count <= rl.limit,
		Limit:     rl.limit,
		Remaining: remaining,
		Reset:     ttl,
	}, nil
}

// KeyFunc builds the rate-limit key for a request.
type KeyFunc func(c *gin.Context) string

func KeyByIP(scope string) KeyFunc {
	return func(c *gin.Context) string {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		return scope + ":ip:" + ip
	}
}

// RateLimit rejects requests over the limiter's budget with 429. Limiter
// errors fail open.
func RateLimit(l Limiter, keyFn KeyFunc, log logrus.FieldLogger) gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		res, err := l.Allow(c.Request.Context(), keyFn(c))
		if err != nil {
			log.WithError(err).Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		resetSec := int((res.Reset + time.Second - 1) / time.Second)
		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(resetSec))
			response.Abort(c, http.StatusTooManyRequests, apperr.KindRateLimited, "Too many requests")
			return
		}
		c.Next()
	}
}
