package http

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/adapters/metrics"
	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/ratelimit"
	"github.com/lionscafe/api/ports"
)

// RateLimiter guards a route tree with a per-client-IP token bucket.
// The config is read through a function so a reloaded config takes
// effect without rebuilding the router.
type RateLimiter struct {
	name    string
	store   ports.RateLimitStore
	config  func() ratelimit.Config
	clock   ports.Clock
	errors  *ErrorWriter
	metrics *metrics.Collector
	logger  zerolog.Logger
	exempt  map[string]bool
	message func(ratelimit.Result) string
}

// RateLimiterOptions configures a limiter instance.
type RateLimiterOptions struct {
	Name    string // metric label, e.g. "default" or "strict"
	Store   ports.RateLimitStore
	Config  func() ratelimit.Config
	Clock   ports.Clock
	Errors  *ErrorWriter
	Metrics *metrics.Collector
	Logger  zerolog.Logger
	Exempt  []string // paths never limited
	Message func(ratelimit.Result) string
}

func NewRateLimiter(opts RateLimiterOptions) *RateLimiter {
	exempt := make(map[string]bool, len(opts.Exempt))
	for _, p := range opts.Exempt {
		exempt[p] = true
	}
	msg := opts.Message
	if msg == nil {
		msg = DefaultRetryMessage
	}
	return &RateLimiter{
		name:    opts.Name,
		store:   opts.Store,
		config:  opts.Config,
		clock:   opts.Clock,
		errors:  opts.Errors,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		exempt:  exempt,
		message: msg,
	}
}

// DefaultRetryMessage phrases the retry delay in seconds.
func DefaultRetryMessage(res ratelimit.Result) string {
	return fmt.Sprintf("Too many requests. Try again in %d seconds.", ratelimit.RetrySeconds(res))
}

// StrictRetryMessage phrases the retry delay in minutes, for the
// tighter limits on authentication endpoints.
func StrictRetryMessage(res ratelimit.Result) string {
	return fmt.Sprintf("Too many attempts. Try again in %d minutes.", ratelimit.RetryMinutes(res))
}

// clientIP returns the caller's address without the port. The router
// installs chi's RealIP middleware ahead of this, so RemoteAddr is
// already the forwarded address when one was supplied.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware enforces the limit and stamps every decision with
// X-RateLimit headers.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.exempt[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		cfg := l.config()
		key := l.name + ":" + clientIP(r)
		res, err := l.store.Take(r.Context(), key, cfg, l.clock.Now())
		if err != nil {
			l.errors.Write(w, r, apperr.Internal("").WithCause(err))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		w.Header().Set("X-RateLimit-Reset", res.ResetAt.UTC().Format(time.RFC3339))

		if !res.Allowed {
			retry := ratelimit.RetrySeconds(res)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			l.metrics.RateLimitHits.WithLabelValues(l.name).Inc()
			l.logger.Warn().
				Str("ip", clientIP(r)).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Int("retry_after", retry).
				Msg("rate limit exceeded")
			l.errors.Write(w, r, apperr.RateLimit(l.message(res)))
			return
		}

		next.ServeHTTP(w, r)
	})
}
