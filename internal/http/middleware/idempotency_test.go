package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func idemEngine(lookup IdempotencyLookup) *gin.Engine {
	r := newEngine()
	g := r.Group("/", Authenticate(stubAuth{"inv": {UserID: "u1", Role: domain.RoleInvestor}}))
	g.POST("/threads/:id/messages", IdempotencyValidator(IdempotencyOptions{MaxLen: 16}, lookup), func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		if IsReplay(c) {
			c.String(http.StatusOK, "replay:"+key)
			return
		}
		if IsRateBypass(c) {
			c.String(http.StatusInternalServerError, "bypass without replay")
			return
		}
		c.String(http.StatusCreated, "fresh:"+key)
	})
	return r
}

func TestIdempotencyValidator(t *testing.T) {
	var calls []string
	lookup := func(_ context.Context, userID, scope, key string, _ time.Time) (bool, error) {
		calls = append(calls, strings.Join([]string{userID, scope, key}, "/"))
		return key == "seen", nil
	}
	r := idemEngine(lookup)
	auth := "Bearer inv"

	w := do(r, http.MethodPost, "/threads/t1/messages", map[string]string{"Authorization": auth})
	if w.Code != http.StatusCreated || w.Body.String() != "fresh:" || len(calls) != 0 {
		t.Fatalf("no key: %d %q calls=%v", w.Code, w.Body.String(), calls)
	}

	w = do(r, http.MethodPost, "/threads/t1/messages", map[string]string{"Authorization": auth, HeaderIdempotencyKey: "new-key"})
	if w.Code != http.StatusCreated || w.Body.String() != "fresh:new-key" {
		t.Fatalf("miss: %d %q", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/threads/t1/messages", map[string]string{"Authorization": auth, HeaderIdempotencyKey: "seen"})
	if w.Code != http.StatusOK || w.Body.String() != "replay:seen" {
		t.Fatalf("hit: %d %q", w.Code, w.Body.String())
	}
	if calls[len(calls)-1] != "u1/t1/seen" {
		t.Fatalf("lookup args = %v", calls)
	}
}

func TestIdempotencyValidator_RejectsBadKeys(t *testing.T) {
	r := idemEngine(nil)
	for _, key := range []string{"has space", "way-too-long-for-the-limit", "bad/slash"} {
		w := do(r, http.MethodPost, "/threads/t1/messages", map[string]string{"Authorization": "Bearer inv", HeaderIdempotencyKey: key})
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Fatalf("key %q: %d %s", key, w.Code, w.Body.String())
		}
	}
}

func TestIdempotencyHelpers_Defaults(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) || IsRateBypass(c) {
		t.Fatal("fresh context must carry no idempotency state")
	}
	c.Set(ctxKeyIdemKey, 42)
	c.Set(ctxKeyIdemReplay, "yes")
	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
		t.Fatal("wrong types must be ignored")
	}
}
