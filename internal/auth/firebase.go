package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/caerus-app/caerus-backend/internal/observability"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	defaultLeeway        = 30 * time.Second

	devTokenPrefix = "dev_"
	devUIDPrefix   = "mock_uid_"
)

// Identity is the federated identity proven by an ID token.
type Identity struct {
	UID   string
	Email string
}

// IdentityVerifier verifies a client-supplied identity token.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// FirebaseVerifier validates Firebase ID tokens (RS256) against Google's
// published JWKS, checking issuer and audience for the project.
type FirebaseVerifier struct {
	projectID string
	keyfunc   jwt.Keyfunc
	parser    *jwt.Parser
}

// NewFirebaseVerifier fetches and caches the signing keys at jwksURL.
func NewFirebaseVerifier(ctx context.Context, projectID, jwksURL string) (*FirebaseVerifier, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("firebase project id must be set")
	}
	start := time.Now()
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	observability.ObserveOutbound("jwks", start, err)
	if err != nil {
		return nil, fmt.Errorf("init firebase JWKS: %w", err)
	}
	return newFirebaseVerifier(projectID, kf.Keyfunc), nil
}

func newFirebaseVerifier(projectID string, kf jwt.Keyfunc) *FirebaseVerifier {
	return &FirebaseVerifier{
		projectID: projectID,
		keyfunc:   kf,
		parser: jwt.NewParser(
			jwt.WithIssuer(firebaseIssuerPrefix+projectID),
			jwt.WithAudience(projectID),
			jwt.WithLeeway(defaultLeeway),
			jwt.WithExpirationRequired(),
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		),
	}
}

// Verify parses and validates idToken.
func (v *FirebaseVerifier) Verify(_ context.Context, idToken string) (Identity, error) {
	claims := jwt.MapClaims{}
	tok, err := v.parser.ParseWithClaims(idToken, claims, v.keyfunc)
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{
		UID:   readString(claims, "user_id"),
		Email: readString(claims, "email"),
	}
	if id.UID == "" {
		id.UID = readString(claims, "sub")
	}
	if id.UID == "" {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

// DevVerifier accepts "dev_<name>" tokens without any network call, mapping
// them to uid "mock_uid_<name>". Any other token goes to Next, if set.
type DevVerifier struct {
	Next IdentityVerifier
}

// Verify implements IdentityVerifier.
func (d DevVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if rest, ok := strings.CutPrefix(idToken, devTokenPrefix); ok && rest != "" {
		return Identity{UID: devUIDPrefix + rest, Email: rest + "@dev.caerus.local"}, nil
	}
	if d.Next == nil {
		return Identity{}, ErrInvalidToken
	}
	return d.Next.Verify(ctx, idToken)
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
