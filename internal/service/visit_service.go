package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/ids"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/phone"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/search"
)

// VisitStore is the slice of the visit repository the service needs.
type VisitStore interface {
	Create(ctx context.Context, visit models.Visit, phoneKey string) error
	List(ctx context.Context, pred search.Predicate, page search.Page) ([]models.Visit, int, error)
	ListAll(ctx context.Context, pred search.Predicate) ([]models.Visit, error)
	FindRecentByPhoneKey(ctx context.Context, phoneKey string, limit int) ([]models.Visit, error)
}

// OfficerGetter loads the live officer record for snapshotting.
type OfficerGetter interface {
	GetByID(ctx context.Context, id string) (models.Officer, error)
}

const (
	previousVisitLimit    = 5
	previousVisitCacheTTL = time.Minute
)

type VisitService struct {
	visits   VisitStore
	officers OfficerGetter
	cache    *redis.Client
	log      zerolog.Logger
}

func NewVisitService(visits VisitStore, officers OfficerGetter, cache *redis.Client, log zerolog.Logger) *VisitService {
	return &VisitService{
		visits:   visits,
		officers: officers,
		cache:    cache,
		log:      log,
	}
}

type CreateVisitInput struct {
	VisitorName string
	Phone       string
	Address     string
	Purpose     models.VisitPurpose
	OfficerID   string
	PhotoKey    *string
	VisitTime   time.Time
}

// CreateVisit records a visit against an officer. The officer must be active
// at creation time, and its identifying fields are copied into the visit as a
// point-in-time snapshot.
func (s *VisitService) CreateVisit(ctx context.Context, input CreateVisitInput) (models.Visit, error) {
	if input.VisitorName == "" || input.Phone == "" || input.OfficerID == "" {
		return models.Visit{}, fmt.Errorf("%w: visitor name, phone and officer required", ErrValidation)
	}
	switch input.Purpose {
	case models.VisitPurposeCase, models.VisitPurposePersonal:
	default:
		return models.Visit{}, fmt.Errorf("%w: purpose must be case or personal", ErrValidation)
	}

	officer, err := s.officers.GetByID(ctx, input.OfficerID)
	if err != nil {
		return models.Visit{}, err
	}
	if officer.Status != models.StatusActive {
		return models.Visit{}, fmt.Errorf("%w: cannot record visit against inactive officer", ErrOfficerInactive)
	}

	visitTime := input.VisitTime
	if visitTime.IsZero() {
		visitTime = time.Now()
	}

	// A phone too short to key is stored with an empty key: the visit is kept
	// but never participates in previous-visit matching.
	phoneKey, err := phone.Key(input.Phone)
	if err != nil {
		phoneKey = ""
	}

	visit := models.Visit{
		ID:                 ids.New(),
		VisitorName:        input.VisitorName,
		Phone:              input.Phone,
		Address:            input.Address,
		Purpose:            input.Purpose,
		OfficerID:          officer.ID,
		OfficerName:        officer.Name,
		OfficerDesignation: officer.Designation,
		OfficerDepartment:  officer.Department,
		OfficerUnit:        officer.Unit,
		OfficerStatus:      officer.Status,
		PhotoKey:           input.PhotoKey,
		VisitTime:          visitTime,
	}

	if err := s.visits.Create(ctx, visit, phoneKey); err != nil {
		return models.Visit{}, err
	}

	if phoneKey != "" {
		s.invalidatePreviousVisits(ctx, phoneKey)
	}

	return visit, nil
}

// PreviousVisits returns up to 5 most-recent prior visits matching the
// normalized phone, one per distinct visitor name. Numbers too short to key
// fail with phone.ErrPhoneTooShort.
func (s *VisitService) PreviousVisits(ctx context.Context, rawPhone string) ([]models.Visit, error) {
	key, err := phone.Key(rawPhone)
	if err != nil {
		return nil, err
	}

	cacheKey := "visits:prev:" + key
	if s.cache != nil {
		if payload, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var visits []models.Visit
			if err := json.Unmarshal(payload, &visits); err == nil {
				return visits, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("previous visits cache read failed")
		}
	}

	visits, err := s.visits.FindRecentByPhoneKey(ctx, key, previousVisitLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(visits); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, previousVisitCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("previous visits cache write failed")
			}
		}
	}

	return visits, nil
}

func (s *VisitService) invalidatePreviousVisits(ctx context.Context, phoneKey string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, "visits:prev:"+phoneKey).Err(); err != nil {
		s.log.Warn().Err(err).Msg("previous visits cache invalidation failed")
	}
}

// ListVisitsInput carries the raw listing filters from the query string.
type ListVisitsInput struct {
	Search        string
	VisitorName   string
	PhoneFilter   string
	Address       string
	OfficerName   string
	Department    string
	Purpose       string
	From          *time.Time
	To            *time.Time
	Page          string
	Limit         string
	OnlyOfficerID string
}

// BuildPredicate turns the listing input into the predicate shared by count
// and fetch. Exported so the export endpoint reuses the identical parsing.
func (in ListVisitsInput) BuildPredicate() search.Predicate {
	pred := search.Predicate{
		Terms:      search.ParseTerms(in.Search),
		TermFields: search.VisitFields,
		TimeField:  "visit_time",
		From:       in.From,
		To:         in.To,
	}

	addFilter := func(field, value string) {
		if value != "" {
			pred.Filters = append(pred.Filters, search.FieldFilter{Field: field, Value: value})
		}
	}
	addFilter("visitor_name", in.VisitorName)
	addFilter("phone", in.PhoneFilter)
	addFilter("address", in.Address)
	addFilter("officer_name", in.OfficerName)
	addFilter("officer_department", in.Department)

	if in.Purpose != "" && in.Purpose != "all" {
		pred.Exact = append(pred.Exact, search.ExactFilter{Field: "purpose", Value: in.Purpose})
	}
	if in.OnlyOfficerID != "" {
		pred.Exact = append(pred.Exact, search.ExactFilter{Field: "officer_id", Value: in.OnlyOfficerID})
	}

	return pred
}

type VisitPage struct {
	Items []models.Visit
	Total int
	Page  int
	Pages int
}

func (s *VisitService) ListVisits(ctx context.Context, input ListVisitsInput) (VisitPage, error) {
	page := search.ParsePage(input.Page, input.Limit)
	visits, total, err := s.visits.List(ctx, input.BuildPredicate(), page)
	if err != nil {
		return VisitPage{}, err
	}
	return VisitPage{
		Items: visits,
		Total: total,
		Page:  page.Number,
		Pages: page.Pages(total),
	}, nil
}

// ExportVisits fetches every visit matching the filters for spreadsheet
// export, bypassing pagination.
func (s *VisitService) ExportVisits(ctx context.Context, input ListVisitsInput) ([]models.Visit, error) {
	return s.visits.ListAll(ctx, input.BuildPredicate())
}
