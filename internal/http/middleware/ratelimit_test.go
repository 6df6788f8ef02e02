package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestKeyBySubjectOrClient(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "203.0.113.9:1234"

	if got := KeyBySubjectOrClient()(c); got != "ip:203.0.113.9" {
		t.Fatalf("anonymous key = %q", got)
	}
	c.Set(ctxKeySubject, "u1")
	if got := KeyBySubjectOrClient()(c); got != "sub:u1" {
		t.Fatalf("subject key = %q", got)
	}
}

func TestRateLimiter_VisitorReuseAndEviction(t *testing.T) {
	rl := NewRateLimiter(1, 0, nil)
	if rl.burst != 1 {
		t.Fatalf("burst coercion failed: %d", rl.burst)
	}
	now := time.Now()
	lim := rl.getVisitor("k1", now)
	if rl.getVisitor("k1", now) != lim {
		t.Fatal("expected the same bucket")
	}

	rl.ttl = time.Minute
	rl.cleanupN = 4999
	_ = rl.getVisitor("k2", now.Add(2*time.Minute))
	if _, ok := rl.visitors["k1"]; ok {
		t.Fatal("idle bucket should be evicted")
	}
}

func TestRateLimiter_Handler429AndBypass(t *testing.T) {
	rl := NewRateLimiter(0.5, 1, nil)
	r := gin.New()
	r.Use(RequestID())
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(replay bool) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "192.0.2.1:1"
		if replay {
			req.Header.Set("X-Replay", "1")
		}
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(false); w.Code != http.StatusNoContent {
		t.Fatalf("first = %d", w.Code)
	}
	w := do(false)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d", w.Code)
	}
	ra, _ := strconv.Atoi(w.Header().Get("Retry-After"))
	if ra < 1 || ra > 2 {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	if body := decodeBody(t, w); body["code"] != "too_many_requests" || body["request_id"] == "" {
		t.Fatalf("body = %v", body)
	}
	if w := do(true); w.Code != http.StatusNoContent {
		t.Fatalf("replay should bypass, got %d", w.Code)
	}
}
