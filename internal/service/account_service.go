package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/search"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/security"
)

type AccountService struct {
	accounts *repository.AccountRepository
	officers *repository.OfficerRepository
	log      zerolog.Logger
}

func NewAccountService(
	accounts *repository.AccountRepository,
	officers *repository.OfficerRepository,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		officers: officers,
		log:      log,
	}
}

func (s *AccountService) Get(ctx context.Context, id string) (models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

type ListAccountsInput struct {
	Search string
	Class  string
	Status string
	Page   string
	Limit  string
}

var accountSearchFields = []string{"name", "email", "phone"}

type AccountPage struct {
	Items []models.Account
	Total int
	Page  int
	Pages int
}

func (s *AccountService) List(ctx context.Context, input ListAccountsInput) (AccountPage, error) {
	pred := search.Predicate{
		Terms:      search.ParseTerms(input.Search),
		TermFields: accountSearchFields,
	}
	if input.Class != "" && input.Class != "all" {
		pred.Exact = append(pred.Exact, search.ExactFilter{Field: "class", Value: input.Class})
	}
	if input.Status != "" && input.Status != "all" {
		pred.Exact = append(pred.Exact, search.ExactFilter{Field: "status", Value: input.Status})
	}

	page := search.ParsePage(input.Page, input.Limit)
	accounts, total, err := s.accounts.List(ctx, pred, page)
	if err != nil {
		return AccountPage{}, err
	}
	return AccountPage{
		Items: accounts,
		Total: total,
		Page:  page.Number,
		Pages: page.Pages(total),
	}, nil
}

type UpdateAccountInput struct {
	Name  string
	Email string
	Phone string
}

func (s *AccountService) UpdateProfile(ctx context.Context, id string, input UpdateAccountInput) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return models.Account{}, err
	}

	if input.Name != "" {
		account.Name = input.Name
	}
	if input.Email != "" {
		account.Email = input.Email
	}
	if input.Phone != "" {
		account.Phone = input.Phone
	}
	if account.Email == "" && account.Phone == "" {
		return models.Account{}, fmt.Errorf("%w: email or phone required", ErrValidation)
	}

	if err := s.accounts.UpdateProfile(ctx, id, account.Name, account.Email, account.Phone); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, id string, current string, next string) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(current, account.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	if next == "" {
		return fmt.Errorf("%w: new password required", ErrValidation)
	}

	hash, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, id, hash)
}

// SetStatus activates or deactivates an account. The super_admin account can
// never be deactivated.
func (s *AccountService) SetStatus(ctx context.Context, id string, status models.Status) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account.Class == models.AccountClassSuperAdmin && status != models.StatusActive {
		return ErrProtectedAccount
	}
	return s.accounts.UpdateStatus(ctx, id, status)
}

// Delete removes an account. The super_admin account is protected, and an
// account linked to an officer is unlinked on the officer side first so no
// dangling back-reference survives.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account.Class == models.AccountClassSuperAdmin {
		return ErrProtectedAccount
	}

	if account.OfficerID != nil {
		err := s.officers.SetAdminLink(ctx, *account.OfficerID, nil, nil)
		if err != nil && !errors.Is(err, repository.ErrOfficerNotFound) {
			return err
		}
	}

	return s.accounts.Delete(ctx, id)
}
