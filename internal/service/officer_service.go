package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/ids"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/linkage"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/search"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/security"
)

type OfficerService struct {
	officers *repository.OfficerRepository
	accounts *repository.AccountRepository
	linkage  *linkage.Manager
	log      zerolog.Logger
}

func NewOfficerService(
	officers *repository.OfficerRepository,
	accounts *repository.AccountRepository,
	linkageManager *linkage.Manager,
	log zerolog.Logger,
) *OfficerService {
	return &OfficerService{
		officers: officers,
		accounts: accounts,
		linkage:  linkageManager,
		log:      log,
	}
}

type OfficerInput struct {
	Name        string
	Phone       string
	BPNumber    string
	Designation string
	Department  string
	Unit        string
	Password    string
}

func (s *OfficerService) Create(ctx context.Context, input OfficerInput) (models.Officer, error) {
	if input.Name == "" || input.Phone == "" || input.BPNumber == "" {
		return models.Officer{}, fmt.Errorf("%w: name, phone and bp number required", ErrValidation)
	}
	if input.Password == "" {
		return models.Officer{}, fmt.Errorf("%w: password required", ErrValidation)
	}

	// Fast-path duplicate check; the unique indexes have the final word.
	if _, err := s.officers.FindByPhone(ctx, input.Phone); err == nil {
		return models.Officer{}, repository.ErrPhoneConflict
	} else if !errors.Is(err, repository.ErrOfficerNotFound) {
		return models.Officer{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.Officer{}, err
	}

	officer := models.Officer{
		ID:           ids.New(),
		Name:         input.Name,
		Phone:        input.Phone,
		BPNumber:     input.BPNumber,
		Designation:  input.Designation,
		Department:   input.Department,
		Unit:         input.Unit,
		Status:       models.StatusActive,
		PasswordHash: passwordHash,
	}

	if err := s.officers.Create(ctx, officer); err != nil {
		return models.Officer{}, err
	}
	return officer, nil
}

func (s *OfficerService) Update(ctx context.Context, id string, input OfficerInput) (models.Officer, error) {
	officer, err := s.officers.GetByID(ctx, id)
	if err != nil {
		return models.Officer{}, err
	}

	if input.Name != "" {
		officer.Name = input.Name
	}
	if input.Phone != "" {
		officer.Phone = input.Phone
	}
	if input.BPNumber != "" {
		officer.BPNumber = input.BPNumber
	}
	officer.Designation = input.Designation
	officer.Department = input.Department
	officer.Unit = input.Unit

	if err := s.officers.UpdateProfile(ctx, officer); err != nil {
		return models.Officer{}, err
	}
	return officer, nil
}

func (s *OfficerService) Get(ctx context.Context, id string) (models.Officer, error) {
	return s.officers.GetByID(ctx, id)
}

func (s *OfficerService) SetStatus(ctx context.Context, id string, status models.Status) error {
	return s.officers.UpdateStatus(ctx, id, status)
}

// SetAdminRole drives the officer/account linkage to the desired state.
// Idempotent either way.
func (s *OfficerService) SetAdminRole(ctx context.Context, id string, admin bool) (models.Officer, error) {
	if admin {
		return s.linkage.Grant(ctx, id)
	}
	return s.linkage.Revoke(ctx, id)
}

// Delete removes an officer. Officers never delete themselves, even when
// they hold the admin role; requesterOfficerID is the officer record behind
// the caller, empty for account principals. A linked account that exists only
// to carry the officer's admin capability (the synthetic one derived from its
// phone) is deleted with it; any other linked account is just demoted.
func (s *OfficerService) Delete(ctx context.Context, id string, requesterOfficerID string) error {
	if requesterOfficerID != "" && requesterOfficerID == id {
		return ErrSelfDeletion
	}

	officer, err := s.officers.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if officer.AccountID != nil {
		account, err := s.accounts.GetByID(ctx, *officer.AccountID)
		switch {
		case errors.Is(err, repository.ErrAccountNotFound):
			// Link already dangling; nothing to clean up.
		case err != nil:
			return err
		case account.Email == linkage.SyntheticEmail(officer.Phone):
			if err := s.accounts.Delete(ctx, account.ID); err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
				return err
			}
		default:
			if err := s.accounts.UnlinkAdmin(ctx, account.ID); err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
				return err
			}
		}
	}

	return s.officers.Delete(ctx, id)
}

type ListOfficersInput struct {
	Search      string
	Name        string
	PhoneFilter string
	Designation string
	Department  string
	Unit        string
	BPNumber    string
	Status      string
	Page        string
	Limit       string
}

func (in ListOfficersInput) buildPredicate() search.Predicate {
	pred := search.Predicate{
		Terms:      search.ParseTerms(in.Search),
		TermFields: search.OfficerFields,
	}

	addFilter := func(field, value string) {
		if value != "" {
			pred.Filters = append(pred.Filters, search.FieldFilter{Field: field, Value: value})
		}
	}
	addFilter("name", in.Name)
	addFilter("phone", in.PhoneFilter)
	addFilter("designation", in.Designation)
	addFilter("department", in.Department)
	addFilter("unit", in.Unit)
	addFilter("bp_no", in.BPNumber)

	if in.Status != "" && in.Status != "all" {
		pred.Exact = append(pred.Exact, search.ExactFilter{Field: "status", Value: in.Status})
	}

	return pred
}

type OfficerPage struct {
	Items []models.Officer
	Total int
	Page  int
	Pages int
}

func (s *OfficerService) List(ctx context.Context, input ListOfficersInput) (OfficerPage, error) {
	page := search.ParsePage(input.Page, input.Limit)
	officers, total, err := s.officers.List(ctx, input.buildPredicate(), page)
	if err != nil {
		return OfficerPage{}, err
	}
	return OfficerPage{
		Items: officers,
		Total: total,
		Page:  page.Number,
		Pages: page.Pages(total),
	}, nil
}
