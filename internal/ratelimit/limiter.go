package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/redmonkez12/user-location-api/internal/httputil"
	"github.com/redmonkez12/user-location-api/internal/logging"
)

// Limiter is a fixed-window per-IP rate limiter backed by Redis. Window
// boundaries come from the injected clock so they are testable.
type Limiter struct {
	client      *redis.Client
	clock       clockwork.Clock
	maxRequests int
	window      time.Duration
}

func NewLimiter(client *redis.Client, maxRequests int, window time.Duration) *Limiter {
	return NewLimiterWithClock(client, maxRequests, window, clockwork.NewRealClock())
}

func NewLimiterWithClock(client *redis.Client, maxRequests int, window time.Duration, clock clockwork.Clock) *Limiter {
	return &Limiter{
		client:      client,
		clock:       clock,
		maxRequests: maxRequests,
		window:      window,
	}
}

// windowKey buckets requests into fixed windows per IP and purpose.
func (l *Limiter) windowKey(ip, purpose string, now time.Time) string {
	bucket := now.Unix() / int64(l.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%s:%d", purpose, ip, bucket)
}

// Allow records one request for the IP and reports whether it fits the
// current window.
func (l *Limiter) Allow(ctx context.Context, ip, purpose string) (bool, error) {
	key := l.windowKey(ip, purpose, l.clock.Now())

	pipe := l.client.Pipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	return count.Val() <= int64(l.maxRequests), nil
}

// Middleware rejects requests over the limit with a 429 envelope. Limiter
// failures fail open: a broken Redis must not take the API down with it.
func Middleware(limiter *Limiter, purpose string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.GetLoggerFromContext(r.Context())
			ip := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), ip, purpose)
			if err != nil {
				logger.Error("rate limit check failed", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				logger.Warn("rate limit exceeded", "ip", ip, "purpose", purpose)
				httputil.RespondErrorWithCode(w, "too many requests, please try again later",
					httputil.CodeTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr; chi's RealIP middleware has
// already replaced it with the client address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
