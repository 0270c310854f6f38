package entitlement

import "github.com/caerus-app/caerus-backend/internal/domain"

// Principal is the authenticated caller as seen by the entitlement layer.
type Principal struct {
	UserID  string
	Role    domain.Role
	IsAdmin bool
}

// Guard returns nil iff p's role is in allowed. It has no side effects.
func Guard(p Principal, allowed ...domain.Role) error {
	if p.Role.In(allowed...) {
		return nil
	}
	return &RoleError{Allowed: allowed}
}

// RequireAdmin returns ErrForbidden unless p carries the admin claim.
func RequireAdmin(p Principal) error {
	if p.IsAdmin {
		return nil
	}
	return ErrForbidden
}
