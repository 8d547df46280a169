// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/HSouheill/hireboard_notifications/apperrors"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles callers, keyed by principal when authenticated and
// by client IP otherwise. A caller that exhausts its bucket is blocked for
// blockDuration.
type RateLimiter struct {
	callers        map[string]*rate.Limiter
	blocked        map[string]time.Time
	mu             sync.Mutex
	defaultLimit   endpointLimit
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

// NewRateLimiter starts the cleanup loop, which stops with ctx.
func NewRateLimiter(ctx context.Context) *RateLimiter {
	limiter := &RateLimiter{
		callers:        make(map[string]*rate.Limiter),
		blocked:        make(map[string]time.Time),
		defaultLimit:   endpointLimit{limit: rate.Every(100 * time.Millisecond), burst: 20},
		blockDuration:  time.Minute,
		endpointLimits: make(map[string]endpointLimit),
		now:            time.Now,
	}

	// Polling endpoints. Well-behaved clients refetch every couple of minutes.
	limiter.SetEndpointLimit("/api/notifications", 2*time.Second, 10)
	limiter.SetEndpointLimit("/api/notifications/unread-count", 2*time.Second, 10)
	limiter.SetEndpointLimit("/api/hr-notifications", 2*time.Second, 10)
	limiter.SetEndpointLimit("/api/hr-notifications/unread-count", 2*time.Second, 10)

	go limiter.cleanup(ctx)
	return limiter
}

// SetEndpointLimit allows one request per every on the route path, with burst.
func (r *RateLimiter) SetEndpointLimit(path string, every time.Duration, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: rate.Every(every), burst: burst}
}

func (r *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for key, until := range r.blocked {
				if now.After(until) {
					delete(r.blocked, key)
				}
			}
			// Buckets refill on their own; dropping them only bounds memory.
			if len(r.callers) > 10000 {
				r.callers = make(map[string]*rate.Limiter)
			}
			r.mu.Unlock()
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := "ip:" + c.RealIP()
			if p, ok := GetPrincipal(c); ok {
				caller = "user:" + p.ID
			}
			path := c.Path()
			key := caller + "|" + path

			r.mu.Lock()
			if until, blocked := r.blocked[key]; blocked {
				if r.now().Before(until) {
					r.mu.Unlock()
					return tooManyRequests(c, until)
				}
				delete(r.blocked, key)
				delete(r.callers, key)
			}

			cfg, ok := r.endpointLimits[path]
			if !ok {
				cfg = r.defaultLimit
			}
			limiter, exists := r.callers[key]
			if !exists {
				limiter = rate.NewLimiter(cfg.limit, cfg.burst)
				r.callers[key] = limiter
			}

			if !limiter.AllowN(r.now(), 1) {
				until := r.now().Add(r.blockDuration)
				r.blocked[key] = until
				r.mu.Unlock()
				return tooManyRequests(c, until)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

// tooManyRequests carries apperrors.ErrRateLimited inside an echo error so
// the status survives echo's default handler too.
func tooManyRequests(c echo.Context, until time.Time) error {
	c.Response().Header().Set("Retry-After", until.UTC().Format(http.TimeFormat))
	limited := apperrors.ErrRateLimited.WithDetails(map[string]string{"retryAfter": until.UTC().Format(time.RFC3339)})
	return echo.NewHTTPError(http.StatusTooManyRequests, limited.Message).SetInternal(limited)
}
