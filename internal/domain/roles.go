package domain

import "strings"

// Role is the marketplace role of a principal. It is fixed at signup.
type Role string

const (
	RoleFounder  Role = "founder"
	RoleInvestor Role = "investor"
	RoleTalent   Role = "talent"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid reports whether r is one of the three marketplace roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFounder, RoleInvestor, RoleTalent:
		return true
	}
	return false
}

// In reports whether r is a member of allowed.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// Recruiter reports whether the role may browse and message talent.
func (r Role) Recruiter() bool { return r == RoleFounder || r == RoleInvestor }

// Article returns "a" or "an" for use in human-readable messages.
func (r Role) Article() string {
	if r == RoleInvestor {
		return "an"
	}
	return "a"
}
