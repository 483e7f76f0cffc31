package linkage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
)

type fakeAccounts struct {
	byID      map[string]*models.Account
	createErr error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: make(map[string]*models.Account)}
}

func (f *fakeAccounts) FindByEmailOrPhone(_ context.Context, email string, phoneNumber string) (models.Account, error) {
	for _, a := range f.byID {
		if a.Email == email || (a.Phone != "" && a.Phone == phoneNumber) {
			return *a, nil
		}
	}
	return models.Account{}, repository.ErrAccountNotFound
}

func (f *fakeAccounts) Create(_ context.Context, account models.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	a := account
	f.byID[a.ID] = &a
	return nil
}

func (f *fakeAccounts) LinkAdmin(_ context.Context, id string, officerID string) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	a.Class = models.AccountClassAdmin
	a.OfficerID = &officerID
	return nil
}

func (f *fakeAccounts) UnlinkAdmin(_ context.Context, id string) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	a.Class = models.AccountClassUser
	a.OfficerID = nil
	return nil
}

type fakeOfficers struct {
	byID map[string]*models.Officer
}

func newFakeOfficers(officers ...models.Officer) *fakeOfficers {
	f := &fakeOfficers{byID: make(map[string]*models.Officer)}
	for _, o := range officers {
		o := o
		f.byID[o.ID] = &o
	}
	return f
}

func (f *fakeOfficers) GetByID(_ context.Context, id string) (models.Officer, error) {
	o, ok := f.byID[id]
	if !ok {
		return models.Officer{}, repository.ErrOfficerNotFound
	}
	return *o, nil
}

func (f *fakeOfficers) SetAdminLink(_ context.Context, id string, accountID *string, roles []models.Role) error {
	o, ok := f.byID[id]
	if !ok {
		return repository.ErrOfficerNotFound
	}
	o.AccountID = accountID
	o.Roles = roles
	return nil
}

func testOfficer() models.Officer {
	return models.Officer{
		ID:           "off-1",
		Name:         "Inspector Rahman",
		Phone:        "01712345678",
		BPNumber:     "BP-1001",
		Status:       models.StatusActive,
		PasswordHash: []byte("$argon2id$..."),
	}
}

// checkInvariant asserts the stable-state linkage invariant: the officer
// holds the admin role exactly when a single admin account back-references it.
func checkInvariant(t *testing.T, accounts *fakeAccounts, officers *fakeOfficers, officerID string) {
	t.Helper()

	officer := officers.byID[officerID]

	var linked []*models.Account
	for _, a := range accounts.byID {
		if a.OfficerID != nil && *a.OfficerID == officerID {
			linked = append(linked, a)
		}
	}

	if officer.HasAdminRole() {
		require.NotNil(t, officer.AccountID)
		require.Len(t, linked, 1)
		assert.Equal(t, *officer.AccountID, linked[0].ID)
		assert.Equal(t, models.AccountClassAdmin, linked[0].Class)
	} else {
		assert.Nil(t, officer.AccountID)
		assert.Empty(t, linked)
	}
}

func TestGrant_CreatesLinkedAdminAccount(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccounts()
	officers := newFakeOfficers(testOfficer())
	m := NewManager(accounts, officers, zerolog.Nop())

	officer, err := m.Grant(context.Background(), "off-1")
	require.NoError(t, err)

	assert.True(t, officer.HasAdminRole())
	require.NotNil(t, officer.AccountID)

	account := accounts.byID[*officer.AccountID]
	require.NotNil(t, account)
	assert.Equal(t, "officer_01712345678@cid.local", account.Email)
	assert.Equal(t, models.AccountClassAdmin, account.Class)
	assert.Equal(t, officers.byID["off-1"].PasswordHash, account.PasswordHash)
	assert.Equal(t, models.StatusActive, account.Status)

	checkInvariant(t, accounts, officers, "off-1")
}

func TestGrant_Idempotent(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccounts()
	officers := newFakeOfficers(testOfficer())
	m := NewManager(accounts, officers, zerolog.Nop())

	first, err := m.Grant(context.Background(), "off-1")
	require.NoError(t, err)

	second, err := m.Grant(context.Background(), "off-1")
	require.NoError(t, err)

	assert.Equal(t, *first.AccountID, *second.AccountID)
	assert.Len(t, accounts.byID, 1)
	checkInvariant(t, accounts, officers, "off-1")
}

func TestGrant_ReusesExistingAccountByPhone(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccounts()
	accounts.byID["acc-9"] = &models.Account{
		ID:    "acc-9",
		Email: "rahman@example.com",
		Phone: "01712345678",
		Class: models.AccountClassUser,
	}
	officers := newFakeOfficers(testOfficer())
	m := NewManager(accounts, officers, zerolog.Nop())

	officer, err := m.Grant(context.Background(), "off-1")
	require.NoError(t, err)

	require.NotNil(t, officer.AccountID)
	assert.Equal(t, "acc-9", *officer.AccountID)
	assert.Equal(t, models.AccountClassAdmin, accounts.byID["acc-9"].Class)
	assert.Len(t, accounts.byID, 1)
	checkInvariant(t, accounts, officers, "off-1")
}

func TestGrant_AccountCreationFailureLeavesNoAdmin(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccounts()
	accounts.createErr = errors.New("storage down")
	officers := newFakeOfficers(testOfficer())
	m := NewManager(accounts, officers, zerolog.Nop())

	_, err := m.Grant(context.Background(), "off-1")
	require.Error(t, err)

	officer := officers.byID["off-1"]
	assert.False(t, officer.HasAdminRole())
	assert.Nil(t, officer.AccountID)
	checkInvariant(t, accounts, officers, "off-1")

	// A later retry succeeds.
	accounts.createErr = nil
	_, err = m.Grant(context.Background(), "off-1")
	require.NoError(t, err)
	checkInvariant(t, accounts, officers, "off-1")
}

func TestRevoke_DemotesAccountAndClearsLink(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccounts()
	officers := newFakeOfficers(testOfficer())
	m := NewManager(accounts, officers, zerolog.Nop())

	granted, err := m.Grant(context.Background(), "off-1")
	require.NoError(t, err)
	accountID := *granted.AccountID

	revoked, err := m.Revoke(context.Background(), "off-1")
	require.NoError(t, err)

	assert.False(t, revoked.HasAdminRole())
	assert.Nil(t, revoked.AccountID)

	// The account survives, demoted.
	account := accounts.byID[accountID]
	require.NotNil(t, account)
	assert.Equal(t, models.AccountClassUser, account.Class)
	assert.Nil(t, account.OfficerID)
	checkInvariant(t, accounts, officers, "off-1")
}

func TestRevoke_Idempotent(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccounts()
	officers := newFakeOfficers(testOfficer())
	m := NewManager(accounts, officers, zerolog.Nop())

	officer, err := m.Revoke(context.Background(), "off-1")
	require.NoError(t, err)
	assert.False(t, officer.HasAdminRole())
	checkInvariant(t, accounts, officers, "off-1")
}

func TestRevoke_LinkedAccountAlreadyGone(t *testing.T) {
	t.Parallel()

	o := testOfficer()
	ghost := "acc-gone"
	o.Roles = []models.Role{models.RoleAdmin}
	o.AccountID = &ghost

	accounts := newFakeAccounts()
	officers := newFakeOfficers(o)
	m := NewManager(accounts, officers, zerolog.Nop())

	revoked, err := m.Revoke(context.Background(), "off-1")
	require.NoError(t, err)
	assert.False(t, revoked.HasAdminRole())
	assert.Nil(t, revoked.AccountID)
}

func TestGrant_OfficerNotFound(t *testing.T) {
	t.Parallel()

	m := NewManager(newFakeAccounts(), newFakeOfficers(), zerolog.Nop())
	_, err := m.Grant(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrOfficerNotFound)
}
