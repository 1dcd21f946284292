package ratelimit

import (
	"net/http"
	"sync"
	"time"

	xhttp "SmartCVD/pkg/http"

	"github.com/labstack/echo/v4"
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

type Limiter struct {
	mu  sync.Mutex
	m   map[string]*bucket
	now func() time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket), now: time.Now} }

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}
	// refill
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens -= 1
		return true
	}
	return false
}

// Sweep drops buckets that have been idle longer than idle and returns how many were removed.
func (l *Limiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idle)
	n := 0
	for k, b := range l.m {
		if b.last.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

// Middleware rejects requests with 429 once the client's bucket is empty.
// Clients are keyed by echo's RealIP.
func (l *Limiter) Middleware(capacity, refillPerSec float64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP(), capacity, refillPerSec) {
				c.Response().Header().Set("Retry-After", "1")
				return xhttp.AppErrorResponse(c,
					xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limit exceeded", http.StatusTooManyRequests))
			}
			return next(c)
		}
	}
}
