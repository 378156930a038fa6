package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
	"github.com/briannzioki/qwiksale-listings/internal/event"
	"github.com/briannzioki/qwiksale-listings/internal/query"
	apperrors "github.com/briannzioki/qwiksale-listings/pkg/errors"
	pkgkafka "github.com/briannzioki/qwiksale-listings/pkg/kafka"
)

// --- Mock Repository ---

type mockListingRepository struct {
	mock.Mock
}

func (m *mockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *mockListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *mockListingRepository) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *mockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *mockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockListingRepository) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	args := m.Called(ctx, pred)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockListingRepository) SelectPage(ctx context.Context, pred query.Predicate, orderBy string, offset, limit int) ([]domain.Listing, error) {
	args := m.Called(ctx, pred, orderBy, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *mockListingRepository) GroupByCount(ctx context.Context, dim query.FacetDimension, pred query.Predicate) ([]domain.FacetEntry, error) {
	args := m.Called(ctx, dim, pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FacetEntry), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(repo *mockListingRepository) *ListingService {
	logger := newTestLogger()
	// The Kafka producer points at an unreachable broker; publish failures
	// are logged and must not fail the operation under test.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
	return NewListingService(repo, producer, nil, logger)
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func sampleListings(n int) []domain.Listing {
	items := make([]domain.Listing, n)
	for i := range items {
		items[i] = domain.Listing{
			ID:     string(rune('a' + i)),
			Kind:   domain.KindProduct,
			Name:   "Item",
			Status: domain.StatusActive,
		}
	}
	return items
}

// --- Browse ---

func TestBrowse_AssemblesEnvelope(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(49), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, "created_at DESC, id DESC", 0, 24).
		Return(sampleListings(24), nil)

	result, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 24, result.PageSize)
	assert.Equal(t, int64(49), result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.Len(t, result.Items, 24)
	assert.Nil(t, result.Facets)
	repo.AssertExpectations(t)
}

func TestBrowse_EmptyResultStillOnePage(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, 0, 24).
		Return([]domain.Listing{}, nil)

	result, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Total)
	assert.Equal(t, 1, result.TotalPages)
	assert.Empty(t, result.Items)
}

func TestBrowse_PaginationOffset(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(100), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, 20, 10).
		Return(sampleListings(10), nil)

	_, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{
		"page":     "3",
		"pageSize": "10",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBrowse_FarPageBeyondResultsDoesNotError(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(3), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, 9999, 1).
		Return([]domain.Listing{}, nil)

	result, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{
		"page":     "10000",
		"pageSize": "1",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, int64(3), result.Total)
}

func TestBrowse_SortKeywordDrivesOrder(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, "price ASC NULLS LAST, created_at DESC, id DESC", 0, 24).
		Return(sampleListings(1), nil)

	_, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{"sort": "price_asc"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBrowse_CountFailureFailsRequest(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused"))
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Listing{}, nil).Maybe()

	result, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
}

func TestBrowse_SelectFailureFailsRequest(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(10), nil).Maybe()
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("statement timeout"))

	result, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
}

func TestBrowse_FacetsIncluded(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(5), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, 0, 24).
		Return(sampleListings(5), nil)

	repo.On("GroupByCount", mock.Anything, mock.MatchedBy(func(d query.FacetDimension) bool { return d.Name == "category" }), mock.Anything).
		Return([]domain.FacetEntry{{Value: "Electronics", Count: 3}, {Value: "Fashion", Count: 2}}, nil)
	repo.On("GroupByCount", mock.Anything, mock.MatchedBy(func(d query.FacetDimension) bool { return d.Name == "brand" }), mock.Anything).
		Return([]domain.FacetEntry{{Value: "Samsung", Count: 4}}, nil)
	repo.On("GroupByCount", mock.Anything, mock.MatchedBy(func(d query.FacetDimension) bool { return d.Name == "condition" }), mock.Anything).
		Return([]domain.FacetEntry{}, nil)

	result, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{"includeFacets": "true"})
	require.NoError(t, err)

	require.NotNil(t, result.Facets)
	assert.Len(t, result.Facets, 3)
	assert.Equal(t, []domain.FacetEntry{{Value: "Electronics", Count: 3}, {Value: "Fashion", Count: 2}}, result.Facets["category"])
	assert.Equal(t, []domain.FacetEntry{{Value: "Samsung", Count: 4}}, result.Facets["brand"])
	assert.Empty(t, result.Facets["condition"])
}

func TestBrowse_FacetFailureDegradesToEmptyList(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(5), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, 0, 24).
		Return(sampleListings(5), nil)

	repo.On("GroupByCount", mock.Anything, mock.MatchedBy(func(d query.FacetDimension) bool { return d.Name == "category" }), mock.Anything).
		Return([]domain.FacetEntry{{Value: "Electronics", Count: 5}}, nil)
	repo.On("GroupByCount", mock.Anything, mock.MatchedBy(func(d query.FacetDimension) bool { return d.Name == "brand" }), mock.Anything).
		Return(nil, errors.New("statement timeout"))
	repo.On("GroupByCount", mock.Anything, mock.MatchedBy(func(d query.FacetDimension) bool { return d.Name == "condition" }), mock.Anything).
		Return([]domain.FacetEntry{{Value: "brand new", Count: 2}}, nil)

	result, err := svc.Browse(context.Background(), domain.KindProduct, map[string]string{"includeFacets": "true"})
	require.NoError(t, err)

	assert.Equal(t, []domain.FacetEntry{{Value: "Electronics", Count: 5}}, result.Facets["category"])
	assert.NotNil(t, result.Facets["brand"])
	assert.Empty(t, result.Facets["brand"])
	assert.Equal(t, []domain.FacetEntry{{Value: "brand new", Count: 2}}, result.Facets["condition"])
}

func TestBrowse_ServiceKindFacetDimensions(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, 0, 24).
		Return(sampleListings(2), nil)
	repo.On("GroupByCount", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.FacetEntry{}, nil)

	result, err := svc.Browse(context.Background(), domain.KindService, map[string]string{"includeFacets": "true"})
	require.NoError(t, err)

	assert.Len(t, result.Facets, 2)
	assert.Contains(t, result.Facets, "category")
	assert.Contains(t, result.Facets, "subcategory")
	repo.AssertNumberOfCalls(t, "GroupByCount", 2)
}

func TestBrowse_IdenticalParamsCompileIdenticalPredicates(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	var seen []query.Predicate
	repo.On("Count", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		seen = append(seen, args.Get(1).(query.Predicate))
	}).Return(int64(0), nil)
	repo.On("SelectPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Listing{}, nil)

	params := map[string]string{"q": "red phone", "category": "Electronics"}
	_, err := svc.Browse(context.Background(), domain.KindProduct, params)
	require.NoError(t, err)
	_, err = svc.Browse(context.Background(), domain.KindProduct, params)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1])
}

// --- CRUD ---

func TestCreateListing_Success(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
		return l.Kind == domain.KindProduct &&
			l.Name == "Samsung Galaxy A54" &&
			l.Slug != "" &&
			l.Status == domain.StatusActive &&
			l.Brand != nil && *l.Brand == "Samsung"
	})).Return(nil)

	listing, err := svc.CreateListing(context.Background(), &CreateListingInput{
		Kind:      domain.KindProduct,
		Name:      "  Samsung Galaxy A54  ",
		Price:     int64Ptr(32000),
		Brand:     strPtr("Samsung"),
		Condition: strPtr(domain.ConditionPreOwned),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, "Samsung Galaxy A54", listing.Name)
	repo.AssertExpectations(t)
}

func TestCreateListing_ServiceKindIgnoresProductFields(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	listing, err := svc.CreateListing(context.Background(), &CreateListingInput{
		Kind:     domain.KindService,
		Name:     "House Cleaning",
		Brand:    strPtr("Samsung"),
		RateType: strPtr(domain.RateTypeHour),
	})
	require.NoError(t, err)
	assert.Nil(t, listing.Brand)
	assert.NotNil(t, listing.RateType)
}

func TestCreateListing_Validation(t *testing.T) {
	svc := newTestService(new(mockListingRepository))

	_, err := svc.CreateListing(context.Background(), &CreateListingInput{Kind: "rental", Name: "X"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateListing(context.Background(), &CreateListingInput{Kind: domain.KindProduct, Name: "   "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	neg := int64(-5)
	_, err = svc.CreateListing(context.Background(), &CreateListingInput{Kind: domain.KindProduct, Name: "X", Price: &neg})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateListing_NotFound(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.UpdateListing(context.Background(), "missing", &UpdateListingInput{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateListing_InvalidStatus(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	existing := &domain.Listing{ID: "lst-1", Kind: domain.KindProduct, Name: "X", Status: domain.StatusActive}
	repo.On("GetByID", mock.Anything, "lst-1").Return(existing, nil)

	_, err := svc.UpdateListing(context.Background(), "lst-1", &UpdateListingInput{Status: strPtr("vanished")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateListing_PartialUpdate(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	existing := &domain.Listing{
		ID: "lst-1", Kind: domain.KindProduct, Name: "Old Name",
		Price: int64Ptr(100), Status: domain.StatusActive,
	}
	repo.On("GetByID", mock.Anything, "lst-1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
		return l.Name == "New Name" && l.Price != nil && *l.Price == 100
	})).Return(nil)

	updated, err := svc.UpdateListing(context.Background(), "lst-1", &UpdateListingInput{Name: strPtr("New Name")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	repo.AssertExpectations(t)
}

func TestDeleteListing_Success(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	existing := &domain.Listing{ID: "lst-1", Kind: domain.KindProduct, Status: domain.StatusActive}
	repo.On("GetByID", mock.Anything, "lst-1").Return(existing, nil)
	repo.On("Delete", mock.Anything, "lst-1").Return(nil)

	err := svc.DeleteListing(context.Background(), "lst-1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteListing_NotFound(t *testing.T) {
	repo := new(mockListingRepository)
	svc := newTestService(repo)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	err := svc.DeleteListing(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
