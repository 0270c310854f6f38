package entitlement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func TestGuard_RejectsExactlyRolesOutsideAllowedSet(t *testing.T) {
	all := []domain.Role{domain.RoleFounder, domain.RoleInvestor, domain.RoleTalent}
	sets := [][]domain.Role{
		{domain.RoleFounder},
		{domain.RoleInvestor},
		{domain.RoleTalent},
		{domain.RoleFounder, domain.RoleInvestor},
		{domain.RoleInvestor, domain.RoleTalent},
		{domain.RoleFounder, domain.RoleInvestor, domain.RoleTalent},
	}
	for _, allowed := range sets {
		for _, role := range all {
			err := Guard(Principal{UserID: "u", Role: role}, allowed...)
			if role.In(allowed...) {
				assert.NoError(t, err, "role %s allowed=%v", role, allowed)
			} else {
				assert.ErrorIs(t, err, ErrForbidden, "role %s allowed=%v", role, allowed)
			}
		}
	}
}

func TestGuard_AdminClaimDoesNotWidenRoles(t *testing.T) {
	err := Guard(Principal{Role: domain.RoleTalent, IsAdmin: true}, domain.RoleFounder)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRoleError_Message(t *testing.T) {
	err := Guard(Principal{Role: domain.RoleTalent}, domain.RoleFounder, domain.RoleInvestor)
	var re *RoleError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "this action requires a founder or investor account", err.Error())

	err = Guard(Principal{Role: domain.RoleFounder}, domain.RoleInvestor)
	assert.Equal(t, "this action requires an investor account", err.Error())
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(Principal{Role: domain.RoleTalent, IsAdmin: true}))
	assert.ErrorIs(t, RequireAdmin(Principal{Role: domain.RoleInvestor}), ErrForbidden)
}

func TestQuotaError_MatchesPaymentRequired(t *testing.T) {
	for _, kind := range []string{KindPitchView, KindTalentView, KindTalentDM, "other"} {
		err := error(&QuotaError{Kind: kind})
		assert.ErrorIs(t, err, ErrPaymentRequired)
		assert.NotEmpty(t, err.Error())
	}
}
