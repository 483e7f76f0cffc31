package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
)

func activeOfficer(roles ...models.Role) *models.Officer {
	return &models.Officer{
		ID:     "off-1",
		Name:   "Officer One",
		Status: models.StatusActive,
		Roles:  roles,
	}
}

func activeAccount(class models.AccountClass) *models.Account {
	return &models.Account{
		ID:     "acc-1",
		Class:  class,
		Status: models.StatusActive,
	}
}

func TestResolve_AccountClasses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		class models.AccountClass
		want  EffectiveClass
	}{
		{models.AccountClassSuperAdmin, ClassSuperAdmin},
		{models.AccountClassAdmin, ClassAdmin},
		{models.AccountClassUser, ClassUser},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.class), func(t *testing.T) {
			t.Parallel()
			perms, err := Resolve(Principal{
				Kind:    models.PrincipalAccount,
				Account: activeAccount(tc.class),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, perms.EffectiveClass)
			assert.True(t, perms.IsActive)
		})
	}
}

func TestResolve_UserCapabilities(t *testing.T) {
	t.Parallel()

	perms, err := Resolve(Principal{
		Kind:    models.PrincipalAccount,
		Account: activeAccount(models.AccountClassUser),
	})
	require.NoError(t, err)

	assert.True(t, perms.CanCreateVisitor)
	// Plain users see all visitors. Product decision, not an oversight.
	assert.True(t, perms.CanViewAllVisitors)
	assert.False(t, perms.CanViewOwnVisitorsOnly)
	assert.False(t, perms.CanManageOfficers)
}

func TestResolve_AdminCapabilities(t *testing.T) {
	t.Parallel()

	for _, class := range []models.AccountClass{models.AccountClassAdmin, models.AccountClassSuperAdmin} {
		perms, err := Resolve(Principal{
			Kind:    models.PrincipalAccount,
			Account: activeAccount(class),
		})
		require.NoError(t, err)
		assert.True(t, perms.CanManageOfficers)
		assert.True(t, perms.CanViewAllVisitors)
		assert.False(t, perms.CanCreateVisitor)
	}
}

func TestResolve_PlainOfficer(t *testing.T) {
	t.Parallel()

	perms, err := Resolve(Principal{
		Kind:    models.PrincipalOfficer,
		Officer: activeOfficer(),
	})
	require.NoError(t, err)

	assert.Equal(t, ClassOfficer, perms.EffectiveClass)
	assert.True(t, perms.CanViewOwnVisitorsOnly)
	assert.False(t, perms.CanViewAllVisitors)
	assert.False(t, perms.CanManageOfficers)
	assert.False(t, perms.CanCreateVisitor)
}

func TestResolve_OfficerAdminFromLiveRecord(t *testing.T) {
	t.Parallel()

	perms, err := Resolve(Principal{
		Kind:    models.PrincipalOfficer,
		Officer: activeOfficer(models.RoleAdmin),
	})
	require.NoError(t, err)

	assert.Equal(t, ClassOfficerAdmin, perms.EffectiveClass)
	assert.True(t, perms.CanManageOfficers)
	assert.True(t, perms.CanViewAllVisitors)
	assert.True(t, perms.CanViewOwnVisitorsOnly)
}

func TestResolve_OfficerAdminUnionRule(t *testing.T) {
	t.Parallel()

	// Token asserted admin at issuance, live record no longer grants it:
	// admin capability is honored (union, not intersection).
	perms, err := Resolve(Principal{
		Kind:        models.PrincipalOfficer,
		Officer:     activeOfficer(),
		IssuedRoles: []models.Role{models.RoleAdmin},
	})
	require.NoError(t, err)
	assert.Equal(t, ClassOfficerAdmin, perms.EffectiveClass)

	// And the other direction: stale token, freshly granted live role.
	perms, err = Resolve(Principal{
		Kind:    models.PrincipalOfficer,
		Officer: activeOfficer(models.RoleAdmin),
	})
	require.NoError(t, err)
	assert.Equal(t, ClassOfficerAdmin, perms.EffectiveClass)
}

func TestResolve_InactivePrincipals(t *testing.T) {
	t.Parallel()

	officer := activeOfficer(models.RoleAdmin)
	officer.Status = models.StatusInactive
	_, err := Resolve(Principal{
		Kind:        models.PrincipalOfficer,
		Officer:     officer,
		IssuedRoles: []models.Role{models.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrAccountInactive)

	account := activeAccount(models.AccountClassSuperAdmin)
	account.Status = models.StatusInactive
	_, err = Resolve(Principal{
		Kind:    models.PrincipalAccount,
		Account: account,
	})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestResolve_MissingRecords(t *testing.T) {
	t.Parallel()

	_, err := Resolve(Principal{Kind: models.PrincipalAccount})
	assert.ErrorIs(t, err, ErrPrincipalNotFound)

	_, err = Resolve(Principal{Kind: models.PrincipalOfficer})
	assert.ErrorIs(t, err, ErrPrincipalNotFound)

	_, err = Resolve(Principal{Kind: "ghost"})
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}
