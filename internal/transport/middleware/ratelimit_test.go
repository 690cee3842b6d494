package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func send(h http.Handler, remote string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/publications/x/status", nil)
	req.RemoteAddr = remote
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsBurst(t *testing.T) {
	rl := NewRateLimiter(60, 10, time.Minute)
	defer rl.Stop()

	handler := rl.Middleware(okHandler())
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, send(handler, "1.2.3.4:1234").Code, "request %d should be allowed", i)
	}
}

func TestRateLimiter_BlocksOverBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3, time.Minute)
	defer rl.Stop()

	handler := rl.Middleware(okHandler())
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send(handler, "1.2.3.4:1234").Code)
	}

	rec := send(handler, "1.2.3.4:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}

func TestRateLimiter_KeysOnHostNotPort(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	defer rl.Stop()

	handler := rl.Middleware(okHandler())
	assert.Equal(t, http.StatusOK, send(handler, "5.6.7.8:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(handler, "5.6.7.8:2000").Code, "new port, same client")
	assert.Equal(t, http.StatusOK, send(handler, "9.9.9.9:1000").Code, "other clients are independent")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
