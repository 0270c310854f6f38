package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caerus-app/caerus-backend/internal/entitlement"
)

// stubAuth accepts the tokens it knows.
type stubAuth map[string]entitlement.Principal

func (s stubAuth) Authenticate(_ context.Context, tok string) (entitlement.Principal, error) {
	p, ok := s[tok]
	if !ok {
		return entitlement.Principal{}, errors.New("unknown token")
	}
	return p, nil
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func do(r http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func principalFor(id string) entitlement.Principal {
	return entitlement.Principal{UserID: id, Role: "investor"}
}
