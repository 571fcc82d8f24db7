package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"resurate/internal/shared/metrics"
	"resurate/internal/shared/server/respond"
)

// UploadGroup limits résumé submissions, the expensive path.
const UploadGroup = "upload"

const sweepEvery = time.Minute

// Quota is a token bucket refilled at Rate tokens per second.
type Quota struct {
	Rate  float64
	Burst int
}

// PerMinute converts a per-minute allowance into a quota with a matching burst.
func PerMinute(n float64) Quota {
	burst := int(math.Ceil(n))
	if burst < 1 {
		burst = 1
	}
	return Quota{Rate: n / 60.0, Burst: burst}
}

// full reports how long an empty bucket takes to refill.
func (q Quota) full() time.Duration {
	if q.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(q.Burst) / q.Rate * float64(time.Second))
}

// RateLimiter holds one bucket per caller and group. Buckets that have been
// idle long enough to refill completely are dropped.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rateBucket
	now       func() time.Time
	lastSweep time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
	idle   time.Duration
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		buckets: make(map[string]*rateBucket),
		now:     now,
	}
}

// Allow takes a token from key's bucket. When none is left it returns how
// long until the next one.
func (l *RateLimiter) Allow(key string, q Quota) (bool, time.Duration) {
	if l == nil || q.Rate <= 0 || q.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &rateBucket{tokens: float64(q.Burst), last: now, idle: q.full()}
		l.buckets[key] = bucket
	}
	if elapsed := now.Sub(bucket.last).Seconds(); elapsed > 0 {
		bucket.tokens = math.Min(float64(q.Burst), bucket.tokens+elapsed*q.Rate)
		bucket.last = now
	}
	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, 0
	}
	wait := (1 - bucket.tokens) / q.Rate
	return false, time.Duration(math.Ceil(wait*1000)) * time.Millisecond
}

// Len reports the number of live buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.last) >= b.idle {
			delete(l.buckets, key)
		}
	}
}

// LimitedFunc writes the response for a rejected request.
type LimitedFunc func(c *gin.Context, retryAfter time.Duration)

// RateLimitConfig scopes a limiter to one group.
type RateLimitConfig struct {
	Group     string
	Quota     Quota
	Limiter   *RateLimiter
	OnLimited LimitedFunc
}

// RateLimit rejects requests once the caller's bucket for the group is empty.
// Callers are keyed by user id, falling back to the client IP. Middleware
// built with the same limiter and group share one allowance.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.OnLimited == nil {
		cfg.OnLimited = LimitedJSON
	}
	return func(c *gin.Context) {
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = c.ClientIP()
		}
		allowed, retryAfter := cfg.Limiter.Allow(principal+"|"+cfg.Group, cfg.Quota)
		if allowed {
			c.Next()
			return
		}
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		metrics.IncRateLimited(cfg.Group)
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds(retryAfter)))
		cfg.OnLimited(c, retryAfter)
		c.Abort()
	}
}

// RetryAfterSeconds rounds d up to whole seconds, never below one.
func RetryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// LimitedJSON is the API rejection: 429 rate_limited with retryAfterMs.
func LimitedJSON(c *gin.Context, retryAfter time.Duration) {
	respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
		"retryAfterMs": retryAfter.Milliseconds(),
	})
}
