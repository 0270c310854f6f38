// Package entitlement decides, per request, whether a principal may view a
// resource or perform an action. Decisions combine the principal's role, the
// investor subscription status and rolling usage counters stored on role
// profiles.
package entitlement

import (
	"errors"
	"strings"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

var (
	// ErrForbidden is returned when the principal's role or admin claim does
	// not permit the action.
	ErrForbidden = errors.New("forbidden")

	// ErrPaymentRequired is returned when an unsubscribed principal has no
	// remaining quota for a gated action.
	ErrPaymentRequired = errors.New("payment required")
)

// RoleError is a role mismatch. It matches ErrForbidden with errors.Is and
// names the account types that would have been accepted.
type RoleError struct {
	Allowed []domain.Role
}

func (e *RoleError) Error() string {
	if len(e.Allowed) == 0 {
		return "this action is not available for your account"
	}
	parts := make([]string, 0, len(e.Allowed))
	for i, r := range e.Allowed {
		if i == 0 {
			parts = append(parts, r.Article()+" "+string(r))
			continue
		}
		parts = append(parts, string(r))
	}
	return "this action requires " + strings.Join(parts, " or ") + " account"
}

// Unwrap lets errors.Is(err, ErrForbidden) match.
func (e *RoleError) Unwrap() error { return ErrForbidden }

// QuotaError is a depleted quota. It matches ErrPaymentRequired.
type QuotaError struct {
	Kind string
}

func (e *QuotaError) Error() string {
	switch e.Kind {
	case KindPitchView:
		return "no free views remaining, subscription required"
	case KindTalentView:
		return "daily talent view limit reached, subscribe for unlimited access"
	case KindTalentDM:
		return "monthly talent message limit reached, subscribe for unlimited access"
	}
	return "subscription required"
}

// Unwrap lets errors.Is(err, ErrPaymentRequired) match.
func (e *QuotaError) Unwrap() error { return ErrPaymentRequired }
