// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file authenticates bearer session tokens and enforces the role and
// admin guards declared on route groups. The resolved entitlement.Principal
// is stored on the Gin context; handlers read it with PrincipalFrom.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caerus-app/caerus-backend/internal/auth"
	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/entitlement"
)

const (
	ctxKeyPrincipal = "principal"
	// ctxKeyUserID mirrors the principal's id for the logger, limiter and
	// idempotency lookups.
	ctxKeyUserID = "userID"
)

// Authenticator resolves a session token to the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entitlement.Principal, error)
}

// abort writes the standard error envelope and stops the chain.
func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}

// Authenticate rejects requests without a valid session with 401 and stashes
// the principal for downstream guards and handlers.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, found := auth.BearerToken(c.GetHeader("Authorization"))
		if !found {
			abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		p, err := a.Authenticate(c.Request.Context(), tok)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
			return
		}
		c.Set(ctxKeyPrincipal, p)
		c.Set(ctxKeyUserID, p.UserID)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller. ok is false on routes that
// are not behind Authenticate.
func PrincipalFrom(c *gin.Context) (entitlement.Principal, bool) {
	v, ok := c.Get(ctxKeyPrincipal)
	if !ok {
		return entitlement.Principal{}, false
	}
	p, ok := v.(entitlement.Principal)
	return p, ok
}

// RequireRole answers 403 unless the principal's role is one of allowed.
func RequireRole(allowed ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if err := entitlement.Guard(p, allowed...); err != nil {
			var re *entitlement.RoleError
			msg := "forbidden"
			if errors.As(err, &re) {
				msg = re.Error()
			}
			abort(c, http.StatusForbidden, "forbidden", msg)
			return
		}
		c.Next()
	}
}

// RequireAdmin answers 403 unless the principal carries the admin claim.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if entitlement.RequireAdmin(p) != nil {
			abort(c, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		c.Next()
	}
}
