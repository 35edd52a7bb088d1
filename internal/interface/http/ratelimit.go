package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/carbonlens/internal/infra/config"
	"github.com/yanqian/carbonlens/pkg/util"
)

const (
	limiterIdleTTL    = 5 * time.Minute
	limiterSweepEvery = time.Minute
)

func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newTokenBuckets(cfg, util.NowUTC)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, wait := limiter.take(ip)
		if ok {
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		logger.Warn("rate limit exceeded", "ip", ip, "route", routeOf(c))
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

// tokenBuckets is a per-client token bucket refilled at RequestsPerMinute.
type tokenBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perSecond float64
	capacity  float64
	now       util.Clock
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func newTokenBuckets(cfg config.RateLimitConfig, now util.Clock) *tokenBuckets {
	capacity := float64(cfg.Burst)
	if capacity < 1 {
		capacity = 1
	}
	return &tokenBuckets{
		buckets:   make(map[string]*bucket),
		perSecond: float64(cfg.RequestsPerMinute) / 60,
		capacity:  capacity,
		now:       now,
		lastSweep: now(),
	}
}

// take spends one token for key. When none is left it reports how long until one refills.
func (l *tokenBuckets) take(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, seen: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSecond)
	}
	b.seen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	missing := 1 - b.tokens
	return false, time.Duration(missing / l.perSecond * float64(time.Second))
}

func (l *tokenBuckets) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.seen) > limiterIdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
