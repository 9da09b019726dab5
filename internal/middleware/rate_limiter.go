package middleware

import (
	"sync"
	"time"

	"bark-console/internal/errors"
	"bark-console/internal/handlers"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// Login is the only unauthenticated endpoint; keep brute forcing slow.
	defaultRequestsPerSecond = 5
	defaultBurstSize         = 10

	visitorIdleCutoff = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter tracks one token bucket per client IP. Each middleware
// instance owns its own table so login limits never bleed into other routes.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

func newIPRateLimiter(rps int, burst int) *ipRateLimiter {
	rl := &ipRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	go rl.evictIdle()
	return rl
}

// RateLimiter limits requests per client IP with the default login budget.
func RateLimiter() echo.MiddlewareFunc {
	return RateLimiterWithConfig(defaultRequestsPerSecond, defaultBurstSize)
}

// RateLimiterWithConfig limits requests per client IP at rps sustained with
// the given burst.
func RateLimiterWithConfig(rps int, burst int) echo.MiddlewareFunc {
	rl := newIPRateLimiter(rps, burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.allow(clientIP(c)) {
				return handlers.SendError(c, errors.SystemRateLimitExceeded)
			}
			return next(c)
		}
	}
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow()
}

func (rl *ipRateLimiter) evictIdle() {
	for {
		time.Sleep(time.Minute)

		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > visitorIdleCutoff {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func clientIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Request().Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.RealIP()
}
