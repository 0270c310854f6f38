package middleware

import (
	"crypto/tls"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders(t *testing.T) {
	r := newEngine()
	r.Use(RequestID(), SecurityHeaders(SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour, NoStore: true}))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/ok", nil)
	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" || h.Get("Cache-Control") != "no-store" {
		t.Fatalf("baseline headers: %v", h)
	}
	if h.Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS on plain HTTP")
	}
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID, Idempotency-Replayed" {
		t.Fatalf("expose = %q", got)
	}

	w = do(r, http.MethodGet, "/ok", map[string]string{"X-Forwarded-Proto": "https"})
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains" {
		t.Fatalf("hsts = %q", got)
	}
}

func TestExposeHeaders_NoDuplicates(t *testing.T) {
	h := http.Header{}
	h.Set("Access-Control-Expose-Headers", "X-Request-ID, Foo")
	exposeHeaders(h, "X-Request-ID", "Bar")
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID, Foo, Bar" {
		t.Fatalf("expose = %q", got)
	}
}

func TestIsHTTPS(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://x", nil)
	if isHTTPS(req) {
		t.Fatal("plain request")
	}
	req.TLS = &tls.ConnectionState{}
	if !isHTTPS(req) {
		t.Fatal("tls request")
	}
}
