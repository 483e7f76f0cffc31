package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/phone"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/search"
)

type fakeVisitStore struct {
	created     []models.Visit
	createdKeys []string
	recent      []models.Visit
	lastPred    search.Predicate
	lastPage    search.Page
}

func (f *fakeVisitStore) Create(_ context.Context, visit models.Visit, phoneKey string) error {
	f.created = append(f.created, visit)
	f.createdKeys = append(f.createdKeys, phoneKey)
	return nil
}

func (f *fakeVisitStore) List(_ context.Context, pred search.Predicate, page search.Page) ([]models.Visit, int, error) {
	f.lastPred = pred
	f.lastPage = page
	return nil, 0, nil
}

func (f *fakeVisitStore) ListAll(_ context.Context, pred search.Predicate) ([]models.Visit, error) {
	f.lastPred = pred
	return nil, nil
}

func (f *fakeVisitStore) FindRecentByPhoneKey(_ context.Context, _ string, _ int) ([]models.Visit, error) {
	return f.recent, nil
}

type fakeOfficerGetter struct {
	officers map[string]models.Officer
}

func (f *fakeOfficerGetter) GetByID(_ context.Context, id string) (models.Officer, error) {
	o, ok := f.officers[id]
	if !ok {
		return models.Officer{}, repository.ErrOfficerNotFound
	}
	return o, nil
}

func newVisitService(store *fakeVisitStore, officers ...models.Officer) *VisitService {
	getter := &fakeOfficerGetter{officers: make(map[string]models.Officer)}
	for _, o := range officers {
		getter.officers[o.ID] = o
	}
	return NewVisitService(store, getter, nil, zerolog.Nop())
}

func validInput() CreateVisitInput {
	return CreateVisitInput{
		VisitorName: "Alice Doe",
		Phone:       "+88 01712-345678",
		Address:     "Dhaka",
		Purpose:     models.VisitPurposeCase,
		OfficerID:   "off-1",
	}
}

func TestCreateVisit_SnapshotsOfficer(t *testing.T) {
	t.Parallel()

	store := &fakeVisitStore{}
	svc := newVisitService(store, models.Officer{
		ID:          "off-1",
		Name:        "Inspector Rahman",
		Designation: "Inspector",
		Department:  "Cyber",
		Unit:        "Unit 3",
		Status:      models.StatusActive,
	})

	visit, err := svc.CreateVisit(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "Inspector Rahman", visit.OfficerName)
	assert.Equal(t, "Inspector", visit.OfficerDesignation)
	assert.Equal(t, "Cyber", visit.OfficerDepartment)
	assert.Equal(t, "Unit 3", visit.OfficerUnit)
	assert.Equal(t, models.StatusActive, visit.OfficerStatus)
	assert.False(t, visit.VisitTime.IsZero())

	require.Len(t, store.createdKeys, 1)
	assert.Equal(t, "01712345678", store.createdKeys[0])
}

func TestCreateVisit_InactiveOfficerRejected(t *testing.T) {
	t.Parallel()

	store := &fakeVisitStore{}
	svc := newVisitService(store, models.Officer{
		ID:     "off-1",
		Status: models.StatusInactive,
	})

	_, err := svc.CreateVisit(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrOfficerInactive)
	assert.Empty(t, store.created)
}

func TestCreateVisit_MissingOfficer(t *testing.T) {
	t.Parallel()

	svc := newVisitService(&fakeVisitStore{})
	_, err := svc.CreateVisit(context.Background(), validInput())
	assert.ErrorIs(t, err, repository.ErrOfficerNotFound)
}

func TestCreateVisit_Validation(t *testing.T) {
	t.Parallel()

	svc := newVisitService(&fakeVisitStore{}, models.Officer{ID: "off-1", Status: models.StatusActive})

	in := validInput()
	in.VisitorName = ""
	_, err := svc.CreateVisit(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.Purpose = "festivity"
	_, err = svc.CreateVisit(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateVisit_ShortPhoneStoredWithoutKey(t *testing.T) {
	t.Parallel()

	store := &fakeVisitStore{}
	svc := newVisitService(store, models.Officer{ID: "off-1", Status: models.StatusActive})

	in := validInput()
	in.Phone = "12345"
	_, err := svc.CreateVisit(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, store.createdKeys, 1)
	assert.Empty(t, store.createdKeys[0])
}

func TestPreviousVisits_ShortPhone(t *testing.T) {
	t.Parallel()

	svc := newVisitService(&fakeVisitStore{})
	_, err := svc.PreviousVisits(context.Background(), "12345")
	assert.ErrorIs(t, err, phone.ErrPhoneTooShort)
}

func TestPreviousVisits_ReturnsStoreResults(t *testing.T) {
	t.Parallel()

	store := &fakeVisitStore{recent: []models.Visit{
		{ID: "v1", VisitorName: "Alice Doe"},
		{ID: "v2", VisitorName: "Alice D."},
	}}
	svc := newVisitService(store)

	visits, err := svc.PreviousVisits(context.Background(), "8801712345678")
	require.NoError(t, err)
	assert.Len(t, visits, 2)
}

func TestListVisits_PredicateConstruction(t *testing.T) {
	t.Parallel()

	store := &fakeVisitStore{}
	svc := newVisitService(store)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListVisits(context.Background(), ListVisitsInput{
		Search:        "alice,456",
		PhoneFilter:   "017",
		Purpose:       "case",
		From:          &from,
		Page:          "2",
		Limit:         "20",
		OnlyOfficerID: "off-1",
	})
	require.NoError(t, err)

	pred := store.lastPred
	assert.Equal(t, []string{"alice", "456"}, pred.Terms)
	assert.Equal(t, search.VisitFields, pred.TermFields)
	assert.Contains(t, pred.Filters, search.FieldFilter{Field: "phone", Value: "017"})
	assert.Contains(t, pred.Exact, search.ExactFilter{Field: "purpose", Value: "case"})
	assert.Contains(t, pred.Exact, search.ExactFilter{Field: "officer_id", Value: "off-1"})
	assert.Equal(t, &from, pred.From)

	assert.Equal(t, 2, store.lastPage.Number)
	assert.Equal(t, 20, store.lastPage.Size)
}

func TestListVisits_PurposeAllIgnored(t *testing.T) {
	t.Parallel()

	store := &fakeVisitStore{}
	svc := newVisitService(store)

	_, err := svc.ListVisits(context.Background(), ListVisitsInput{Purpose: "all"})
	require.NoError(t, err)
	assert.Empty(t, store.lastPred.Exact)
}
