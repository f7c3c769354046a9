package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"alyra/internal/platform/metrics"
	"alyra/pkg/platform/httputil"
	"alyra/pkg/requestcontext"
)

// Middleware rejects callers that exceed limit requests per window.
// Store errors let the request through.
type Middleware struct {
	store    Store
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(store Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.limit <= 0 {
		m.disabled = true
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Handler limits by authenticated identity when there is one and by client
// IP otherwise. Mount it after authentication to key on identity.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		kind, key := "ip", requestcontext.ClientIP(ctx)
		if id := requestcontext.Identity(ctx); !id.IsNil() {
			kind, key = "identity", id.String()
		}

		result, err := m.store.Allow(ctx, kind+":"+key, m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed", "error", err, "kind", kind)
			next.ServeHTTP(w, r)
			return
		}

		setHeaders(w, result)
		if !result.Allowed {
			if m.metrics != nil {
				m.metrics.RateLimited.WithLabelValues(kind).Inc()
			}
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests, try again later",
				"retry_after":       result.RetryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func setHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
