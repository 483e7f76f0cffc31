// Package linkage grants and revokes admin capability on officers, keeping
// the bidirectional officer/account link consistent: an officer holds the
// admin role exactly when an admin-class account back-references it.
package linkage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/ids"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/phone"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
)

// AccountStore is the slice of the account repository the manager needs.
type AccountStore interface {
	FindByEmailOrPhone(ctx context.Context, email string, phoneNumber string) (models.Account, error)
	Create(ctx context.Context, account models.Account) error
	LinkAdmin(ctx context.Context, id string, officerID string) error
	UnlinkAdmin(ctx context.Context, id string) error
}

// OfficerStore is the slice of the officer repository the manager needs.
type OfficerStore interface {
	GetByID(ctx context.Context, id string) (models.Officer, error)
	SetAdminLink(ctx context.Context, id string, accountID *string, roles []models.Role) error
}

type Manager struct {
	accounts AccountStore
	officers OfficerStore
	log      zerolog.Logger
}

func NewManager(accounts AccountStore, officers OfficerStore, log zerolog.Logger) *Manager {
	return &Manager{
		accounts: accounts,
		officers: officers,
		log:      log,
	}
}

// SyntheticEmail derives the deterministic account identifier carried by an
// officer's admin account from the officer's phone number.
func SyntheticEmail(officerPhone string) string {
	return fmt.Sprintf("officer_%s@cid.local", phone.Normalize(officerPhone))
}

// Grant gives an officer admin capability, reusing an existing account with a
// matching handle or creating one. Idempotent. The account step runs first:
// if it fails the officer record is untouched and stays without admin, so a
// retry of Grant is always safe.
func (m *Manager) Grant(ctx context.Context, officerID string) (models.Officer, error) {
	officer, err := m.officers.GetByID(ctx, officerID)
	if err != nil {
		return models.Officer{}, err
	}

	if officer.HasAdminRole() && officer.AccountID != nil {
		return officer, nil
	}

	email := SyntheticEmail(officer.Phone)
	account, err := m.accounts.FindByEmailOrPhone(ctx, email, officer.Phone)
	switch {
	case err == nil:
		if err := m.accounts.LinkAdmin(ctx, account.ID, officer.ID); err != nil {
			return models.Officer{}, fmt.Errorf("upgrade account: %w", err)
		}
		m.log.Info().
			Str("officer_id", officer.ID).
			Str("account_id", account.ID).
			Msg("reused existing account for admin grant")

	case errors.Is(err, repository.ErrAccountNotFound):
		account = models.Account{
			ID:           ids.New(),
			Name:         officer.Name,
			Email:        email,
			Phone:        officer.Phone,
			PasswordHash: officer.PasswordHash,
			Class:        models.AccountClassAdmin,
			Status:       officer.Status,
			OfficerID:    &officer.ID,
		}
		if err := m.accounts.Create(ctx, account); err != nil {
			return models.Officer{}, fmt.Errorf("create admin account: %w", err)
		}

	default:
		return models.Officer{}, err
	}

	roles := []models.Role{models.RoleAdmin}
	if err := m.officers.SetAdminLink(ctx, officer.ID, &account.ID, roles); err != nil {
		return models.Officer{}, fmt.Errorf("link officer: %w", err)
	}

	officer.Roles = roles
	officer.AccountID = &account.ID
	return officer, nil
}

// Revoke removes an officer's admin capability. The linked account is not
// deleted, only demoted to a plain user with its back-reference cleared.
// Idempotent.
func (m *Manager) Revoke(ctx context.Context, officerID string) (models.Officer, error) {
	officer, err := m.officers.GetByID(ctx, officerID)
	if err != nil {
		return models.Officer{}, err
	}

	if !officer.HasAdminRole() && officer.AccountID == nil {
		return officer, nil
	}

	if officer.AccountID != nil {
		err := m.accounts.UnlinkAdmin(ctx, *officer.AccountID)
		if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
			return models.Officer{}, fmt.Errorf("demote account: %w", err)
		}
		if errors.Is(err, repository.ErrAccountNotFound) {
			m.log.Warn().
				Str("officer_id", officer.ID).
				Str("account_id", *officer.AccountID).
				Msg("linked account already gone during revoke")
		}
	}

	if err := m.officers.SetAdminLink(ctx, officer.ID, nil, nil); err != nil {
		return models.Officer{}, fmt.Errorf("unlink officer: %w", err)
	}

	officer.Roles = nil
	officer.AccountID = nil
	return officer, nil
}
