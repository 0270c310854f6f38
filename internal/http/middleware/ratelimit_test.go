package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestKeyByPrincipalOrIP(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "203.0.113.9:4000"

	if got := KeyByPrincipalOrIP()(c); got != "ip:203.0.113.9" {
		t.Fatalf("anonymous key = %q", got)
	}
	c.Set(ctxKeyPrincipal, principalFor("u1"))
	if got := KeyByPrincipalOrIP()(c); got != "user:u1" {
		t.Fatalf("principal key = %q", got)
	}
}

func TestRateLimiter_ReusesAndSweeps(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyByPrincipalOrIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d", rl.burst)
	}
	a := rl.limiter("k")
	if rl.limiter("k") != a {
		t.Fatal("bucket not reused")
	}

	rl.ttl = 0
	rl.gcEvery = 1
	rl.visitors["stale"] = &visitor{lastSeen: time.Now().Add(-time.Hour)}
	rl.limiter("fresh")
	if _, ok := rl.visitors["stale"]; ok {
		t.Fatal("stale bucket survived the sweep")
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(0, 1, func(*gin.Context) string { return "same" })
	r := newEngine()
	r.POST("/msg", func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}, rl.Handler(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	if w := do(r, http.MethodPost, "/msg", nil); w.Code != http.StatusCreated {
		t.Fatalf("first = %d", w.Code)
	}
	w := do(r, http.MethodPost, "/msg", nil)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("second = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/msg", map[string]string{"X-Replay": "1"}); w.Code != http.StatusCreated {
		t.Fatalf("replay = %d", w.Code)
	}
}
