package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func TestMetrics(t *testing.T) {
	r := newEngine()
	r.Use(Metrics())
	r.GET("/pitches/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	g := r.Group("/", Authenticate(stubAuth{"fnd": {UserID: "f", Role: domain.RoleFounder}}))
	g.GET("/dashboard", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	baseAnon := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/pitches/:id", "200", "anonymous"))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404", "anonymous"))
	baseRole := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/dashboard", "204", "founder"))

	do(r, http.MethodGet, "/pitches/1", nil)
	do(r, http.MethodGet, "/pitches/2", nil)
	do(r, http.MethodGet, "/nope", nil)
	do(r, http.MethodGet, "/dashboard", map[string]string{"Authorization": "Bearer fnd"})

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/pitches/:id", "200", "anonymous")); got != baseAnon+2 {
		t.Fatalf("route counter = %v, want %v", got, baseAnon+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404", "anonymous")); got != baseMiss+1 {
		t.Fatalf("unmatched counter = %v, want %v", got, baseMiss+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/dashboard", "204", "founder")); got != baseRole+1 {
		t.Fatalf("role counter = %v, want %v", got, baseRole+1)
	}
	if v := testutil.ToFloat64(httpInflight); v != 0 {
		t.Fatalf("inflight = %v", v)
	}
}
