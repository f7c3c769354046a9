package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alyra/internal/platform/metrics"
	"alyra/pkg/domain"
	"alyra/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("redis: connection refused")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler, identity domain.Identity, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ballots", nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "test")
	if identity != "" {
		ctx = requestcontext.WithIdentity(ctx, identity)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	h := New(NewInMemoryStore(), 2, time.Minute, discardLogger(), WithMetrics(m)).Handler(okHandler())

	first := serve(h, "alice", "10.0.0.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	serve(h, "alice", "10.0.0.1")
	rejected := serve(h, "alice", "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.NotEmpty(t, rejected.Header().Get("Retry-After"))
	assert.Contains(t, rejected.Body.String(), `"error":"rate_limit_exceeded"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("identity")))

	// Same IP, different identity: separate budget.
	assert.Equal(t, http.StatusNoContent, serve(h, "bob", "10.0.0.1").Code)
}

func TestMiddlewareFallsBackToClientIP(t *testing.T) {
	h := New(NewInMemoryStore(), 1, time.Minute, discardLogger()).Handler(okHandler())

	assert.Equal(t, http.StatusNoContent, serve(h, "", "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, "", "10.0.0.2").Code)
	assert.Equal(t, http.StatusNoContent, serve(h, "", "10.0.0.3").Code)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	h := New(failingStore{}, 1, time.Minute, discardLogger()).Handler(okHandler())
	assert.Equal(t, http.StatusNoContent, serve(h, "alice", "10.0.0.1").Code)
}

func TestMiddlewareDisabled(t *testing.T) {
	for _, mw := range []*Middleware{
		New(failingStore{}, 1, time.Minute, discardLogger(), WithDisabled(true)),
		New(failingStore{}, 0, time.Minute, discardLogger()),
	} {
		rec := serve(mw.Handler(okHandler()), "alice", "10.0.0.1")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}
