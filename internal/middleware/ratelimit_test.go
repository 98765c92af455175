package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moriyama/internmatch/internal/model"
	"golang.org/x/time/rate"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    2,
		AuthRate:        rate.Limit(1000),
		AuthBurst:       2,
		CleanupInterval: time.Hour,
	}
}

func authedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	ctx := ContextWithProfile(req.Context(), &model.Profile{ID: userID, Role: model.RoleStudent})
	return req.WithContext(ctx)
}

func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("user-1"))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestGeneralMiddleware_BlocksOverBurst(t *testing.T) {
	config := testRateLimiterConfig()
	config.GeneralRate = rate.Limit(0.001) // 補充をほぼ止める
	rl := NewRateLimiter(config)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("user-1"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("user-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestGeneralMiddleware_PerUserIsolation(t *testing.T) {
	config := testRateLimiterConfig()
	config.GeneralRate = rate.Limit(0.001)
	rl := NewRateLimiter(config)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1のバーストを使い切る
	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), authedRequest("user-1"))
	}

	// user-2は影響を受けない
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("user-2"))
	if w.Code != http.StatusOK {
		t.Errorf("user-2 status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestGeneralMiddleware_Unauthenticated_Returns401(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be called")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/test", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_LimitsPerClientIP(t *testing.T) {
	config := testRateLimiterConfig()
	config.AuthRate = rate.Limit(0.001)
	rl := NewRateLimiter(config)
	defer rl.Stop()

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func(remoteAddr string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remoteAddr
		return req
	}

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newReq("203.0.113.1:1234"))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	// バースト超過で429
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("203.0.113.1:1234"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// 別IPは影響を受けない
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("203.0.113.2:1234"))
	if w.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestClientIPFromRequest_ForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientIPFromRequest(req); got != "203.0.113.7" {
		t.Errorf("clientIPFromRequest = %q, want 203.0.113.7", got)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	config := testRateLimiterConfig()
	config.CleanupInterval = time.Millisecond
	rl := NewRateLimiter(config)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), authedRequest("user-1"))

	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("expected 1 limiter, got %d", rl.GeneralLimiterCount())
	}

	// TTL（CleanupInterval*2）経過後にエントリが回収される
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if rl.GeneralLimiterCount() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expected stale limiter to be cleaned up")
}
