package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/airquality-advisor/internal/infra/config"
)

// errorHandlingMiddleware renders the last handler error as {"error":{"code","message"}}.
func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		attrs := []any{"code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err}
		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Warn("request failed", attrs...)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// upstreamRateLimit throttles the routes that reach the geocoding, air pollution or LLM providers.
// Rejected requests carry Retry-After with the seconds until the next token.
func upstreamRateLimit(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newIPRateLimiter(cfg, time.Now)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, wait := limiter.reserve(ip)
		if ok {
			c.Next()
			return
		}
		retryAfter := int(math.Ceil(wait.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path, "retry_after", retryAfter)
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests, please retry later", nil))
	}
}

// ipRateLimiter is a per-client token bucket refilled at ratePerMinute up to burst.
type ipRateLimiter struct {
	mu            sync.Mutex
	ratePerMinute float64
	burst         float64
	visitors      map[string]*visitor
	ttl           time.Duration
	now           func() time.Time
}

type visitor struct {
	tokens   float64
	lastSeen time.Time
}

func newIPRateLimiter(cfg config.RateLimitConfig, now func() time.Time) *ipRateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		ratePerMinute: float64(cfg.RequestsPerMinute),
		burst:         float64(burst),
		visitors:      make(map[string]*visitor),
		ttl:           5 * time.Minute,
		now:           now,
	}
}

// reserve takes one token for ip. When none is left it reports how long until one refills.
func (l *ipRateLimiter) reserve(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.evictIdle(now)

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{tokens: l.burst}
		l.visitors[ip] = v
	} else if elapsed := now.Sub(v.lastSeen).Minutes(); elapsed > 0 {
		v.tokens = math.Min(l.burst, v.tokens+elapsed*l.ratePerMinute)
	}
	v.lastSeen = now

	if v.tokens < 1 {
		missing := 1 - v.tokens
		return false, time.Duration(missing / l.ratePerMinute * float64(time.Minute))
	}
	v.tokens--
	return true, 0
}

func (l *ipRateLimiter) evictIdle(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, ip)
		}
	}
}
