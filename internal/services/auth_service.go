package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/auth"
	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// Session is a freshly issued bearer token.
type Session struct {
	Token     string       `json:"access_token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// AuthService exchanges identity-provider tokens for session tokens and
// resolves session tokens back to principals.
type AuthService struct {
	DB        *gorm.DB
	Sessions  *auth.Issuer
	Verifier  auth.IdentityVerifier
	FreeViews int
}

// Signup creates the account for a verified identity with the given role.
// An identity that already has an account gets ErrConflict.
func (s *AuthService) Signup(ctx context.Context, idToken, role string) (*Session, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Signup",
		trace.WithAttributes(attribute.String("user.role", role)))
	defer span.End()

	r, ok := domain.ParseRole(role)
	if !ok {
		return nil, invalidf("role must be one of founder, investor, talent")
	}
	id, err := s.verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if _, err := repo.GetUserByFirebaseUID(ctx, s.DB, id.UID); err == nil {
		return nil, conflictf("an account already exists for this identity")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" {
		return nil, invalidf("identity token carries no email")
	}
	u := &domain.User{FirebaseUID: id.UID, Email: email, Role: r}
	if err := repo.CreateUserWithProfile(ctx, s.DB, u, s.FreeViews); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, conflictf("an account already exists for this email")
		}
		return nil, err
	}
	return s.issue(u)
}

// Login issues a session for an existing account.
func (s *AuthService) Login(ctx context.Context, idToken string) (*Session, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Login")
	defer span.End()

	id, err := s.verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	u, err := repo.GetUserByFirebaseUID(ctx, s.DB, id.UID)
	if err != nil {
		return nil, notFound(err, "account")
	}
	return s.issue(u)
}

// Authenticate resolves a session token to the current principal. The user
// row is re-read so admin grants and revocations apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (entitlement.Principal, error) {
	sub, err := s.Sessions.Parse(token)
	if err != nil {
		return entitlement.Principal{}, ErrUnauthenticated
	}
	u, err := repo.GetUser(ctx, s.DB, sub)
	if errors.Is(err, repo.ErrNotFound) {
		return entitlement.Principal{}, ErrUnauthenticated
	}
	if err != nil {
		return entitlement.Principal{}, err
	}
	return entitlement.Principal{UserID: u.ID, Role: u.Role, IsAdmin: u.IsAdmin}, nil
}

func (s *AuthService) verify(ctx context.Context, idToken string) (auth.Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return auth.Identity{}, invalidf("id_token is required")
	}
	if s.Verifier == nil {
		return auth.Identity{}, fmt.Errorf("%w: identity provider not configured", ErrUpstream)
	}
	id, err := s.Verifier.Verify(ctx, idToken)
	if err != nil {
		return auth.Identity{}, ErrUnauthenticated
	}
	return id, nil
}

func (s *AuthService) issue(u *domain.User) (*Session, error) {
	tok, exp, err := s.Sessions.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, TokenType: "bearer", ExpiresAt: exp, User: u}, nil
}
