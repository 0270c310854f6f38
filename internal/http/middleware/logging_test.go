package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID(t *testing.T) {
	r := newEngine()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := do(r, http.MethodGet, "/", nil)
	gen := w.Header().Get(requestIDHeader)
	if len(gen) != 36 || w.Body.String() != gen {
		t.Fatalf("generated id = %q body=%q", gen, w.Body.String())
	}

	w = do(r, http.MethodGet, "/", map[string]string{"x-request-id": "abc-123"})
	if w.Header().Get(requestIDHeader) != "abc-123" {
		t.Fatalf("propagated id = %q", w.Header().Get(requestIDHeader))
	}
}

func TestRecovery(t *testing.T) {
	logs := captureLogs(t)
	r := newEngine()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	w := do(r, http.MethodGet, "/boom", map[string]string{requestIDHeader: "rid-1"})
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusInternalServerError || body["code"] != "internal_error" || body["request_id"] != "rid-1" {
		t.Fatalf("panic response = %d %v", w.Code, body)
	}
	if !strings.Contains(logs.String(), "panic recovered") {
		t.Fatalf("panic not logged: %s", logs.String())
	}

	w = do(r, http.MethodGet, "/late", nil)
	if w.Body.String() != "partial" {
		t.Fatalf("written body must be left alone: %q", w.Body.String())
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatal("fallback logger must not be nil")
	}
	if truncate("abcdef", 3) != "abc…" || truncate("abc", 0) != "abc" || asString(7) != "" {
		t.Fatal("helpers misbehave")
	}
}
