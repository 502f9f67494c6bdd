package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, limit int) (*Limiter, *clock) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerWindow: limit, Window: time.Minute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	rl.now = c.now
	return rl, c
}

func TestAllowWithinWindow(t *testing.T) {
	rl, c := newTestLimiter(t, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "clients are tracked separately")

	c.t = c.t.Add(time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"), "a new window resets the count")

	m := rl.GetMetrics()
	assert.Equal(t, int64(1), m.TotalHits)
	assert.Equal(t, int64(2), m.ClientCount)
}

func TestSteadyTrafficDoesNotExtendWindow(t *testing.T) {
	rl, c := newTestLimiter(t, 3)
	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("ip"))
		c.t = c.t.Add(15 * time.Second)
	}
	assert.False(t, rl.Allow("ip"))
	c.t = c.t.Add(15 * time.Second)
	assert.True(t, rl.Allow("ip"))
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, c := newTestLimiter(t, 5)
	rl.Allow("a")
	c.t = c.t.Add(11 * time.Minute)
	rl.Allow("b")

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddlewareOnlyCountsMatchingRequests(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	onlyPost := func(r *http.Request) bool { return r.Method == http.MethodPost }
	ip := func(*http.Request) string { return "client" }
	h := rl.Middleware(ip, onlyPost, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)

	rec := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
