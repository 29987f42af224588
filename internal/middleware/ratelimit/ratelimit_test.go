package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, perMinute int, clock *time.Time) *Limiter {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute})
	rl.now = func() time.Time { return *clock }
	t.Cleanup(rl.Stop)
	return rl
}

func TestAllowWindow(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, 2, &clock)

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)

	clock = clock.Add(20 * time.Second)
	ok, retry := rl.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, retry)
	assert.Equal(t, int64(1), rl.Hits())

	// other clients are independent
	ok, _ = rl.Allow("b")
	assert.True(t, ok)
	assert.Equal(t, 2, rl.ActiveClients())

	clock = clock.Add(40 * time.Second)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "a new window starts after a minute")
}

func TestCleanupStaleEntries(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, 5, &clock)

	rl.Allow("a")
	clock = clock.Add(3 * time.Minute)
	rl.Allow("b")

	rl.cleanupStaleEntries()
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddlewareRejectsWithRetryAfter(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(t, 1, &clock)

	ip := func(*http.Request) string { return "198.51.100.7" }
	h := rl.Middleware(ip, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)

	clock = clock.Add(500 * time.Millisecond)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
