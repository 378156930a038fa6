package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
	"github.com/briannzioki/qwiksale-listings/internal/query"
	"github.com/briannzioki/qwiksale-listings/pkg/database"
	apperrors "github.com/briannzioki/qwiksale-listings/pkg/errors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var listingCols = []string{
	"id", "kind", "name", "slug", "description", "category", "subcategory",
	"price", "featured", "location", "status", "brand", "condition",
	"rate_type", "availability", "service_area", "seller_id", "created_at", "updated_at",
}

func sampleListing() domain.Listing {
	return domain.Listing{
		ID:          "lst-1",
		Kind:        domain.KindProduct,
		Name:        "Samsung Galaxy A54",
		Slug:        "samsung-galaxy-a54-a3f2c1",
		Description: strPtr("Clean phone, barely used"),
		Category:    strPtr("Electronics"),
		Subcategory: strPtr("Phones"),
		Price:       int64Ptr(32000),
		Featured:    true,
		Location:    strPtr("Nairobi"),
		Status:      domain.StatusActive,
		Brand:       strPtr("Samsung"),
		Condition:   strPtr(domain.ConditionPreOwned),
		SellerID:    strPtr("user-1"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func listingRow(l domain.Listing) []any {
	return []any{
		l.ID, l.Kind, l.Name, l.Slug, l.Description, l.Category, l.Subcategory,
		l.Price, l.Featured, l.Location, l.Status, l.Brand, l.Condition,
		l.RateType, l.Availability, l.ServiceArea, l.SellerID, l.CreatedAt, l.UpdatedAt,
	}
}

func activePredicate() query.Predicate {
	return query.Compile(domain.ListingQuery{Kind: domain.KindProduct})
}

func TestListingRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	l := sampleListing()

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			l.ID, l.Kind, l.Name, l.Slug, l.Description, l.Category, l.Subcategory,
			l.Price, l.Featured, l.Location, l.Status, l.Brand, l.Condition,
			l.RateType, l.Availability, l.ServiceArea, l.SellerID, l.CreatedAt, l.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), &l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Create_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	l := sampleListing()

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			l.ID, l.Kind, l.Name, l.Slug, l.Description, l.Category, l.Subcategory,
			l.Price, l.Featured, l.Location, l.Status, l.Brand, l.Condition,
			l.RateType, l.Availability, l.ServiceArea, l.SellerID, l.CreatedAt, l.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &l)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	l := sampleListing()
	mock.ExpectQuery("SELECT .+ FROM listings WHERE id").
		WithArgs(l.ID).
		WillReturnRows(pgxmock.NewRows(listingCols).AddRow(listingRow(l)...))

	result, err := repo.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, result.ID)
	assert.Equal(t, l.Name, result.Name)
	assert.Equal(t, l.Brand, result.Brand)
	assert.Equal(t, l.Price, result.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM listings WHERE id").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), "missing-id")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetBySlug_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	l := sampleListing()
	mock.ExpectQuery("SELECT .+ FROM listings WHERE slug").
		WithArgs(l.Slug).
		WillReturnRows(pgxmock.NewRows(listingCols).AddRow(listingRow(l)...))

	result, err := repo.GetBySlug(context.Background(), l.Slug)
	require.NoError(t, err)
	assert.Equal(t, l.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	l := sampleListing()
	mock.ExpectExec("UPDATE listings").
		WithArgs(
			l.Name, l.Slug, l.Description, l.Category, l.Subcategory,
			l.Price, l.Featured, l.Location, l.Status, l.Brand, l.Condition,
			l.RateType, l.Availability, l.ServiceArea, l.UpdatedAt, l.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &l)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Delete_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	mock.ExpectExec("DELETE FROM listings").
		WithArgs("lst-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "lst-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Count(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	pred := activePredicate()
	mock.ExpectQuery(`SELECT count\(\*\) FROM listings WHERE`).
		WithArgs("product", "active").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	total, err := repo.Count(context.Background(), pred)
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Count_QueryError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	mock.ExpectQuery(`SELECT count\(\*\) FROM listings WHERE`).
		WithArgs("product", "active").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.Count(context.Background(), activePredicate())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_SelectPage_AppendsLimitAndOffset(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	l := sampleListing()
	mock.ExpectQuery("SELECT .+ FROM listings").
		WithArgs("product", "active", 24, 48).
		WillReturnRows(pgxmock.NewRows(listingCols).AddRow(listingRow(l)...))

	listings, err := repo.SelectPage(context.Background(), activePredicate(), query.OrderBy(domain.SortNewest), 48, 24)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, l.ID, listings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_SelectPage_EmptyResultIsNotNil(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM listings").
		WithArgs("product", "active", 24, 0).
		WillReturnRows(pgxmock.NewRows(listingCols))

	listings, err := repo.SelectPage(context.Background(), activePredicate(), query.OrderBy(domain.SortNewest), 0, 24)
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_SelectPage_BlankNameGetsPlaceholder(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	l := sampleListing()
	l.Name = "   "
	mock.ExpectQuery("SELECT .+ FROM listings").
		WithArgs("product", "active", 24, 0).
		WillReturnRows(pgxmock.NewRows(listingCols).AddRow(listingRow(l)...))

	listings, err := repo.SelectPage(context.Background(), activePredicate(), query.OrderBy(domain.SortNewest), 0, 24)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, placeholderName, listings[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GroupByCount(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	dim := query.FacetDimension{Name: "category", Column: "category", Cap: 20}
	mock.ExpectQuery("SELECT category, count").
		WithArgs("product", "active", 20).
		WillReturnRows(
			pgxmock.NewRows([]string{"category", "entry_count"}).
				AddRow("Electronics", int64(12)).
				AddRow("Fashion", int64(7)),
		)

	entries, err := repo.GroupByCount(context.Background(), dim, activePredicate())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.FacetEntry{Value: "Electronics", Count: 12}, entries[0])
	assert.Equal(t, domain.FacetEntry{Value: "Fashion", Count: 7}, entries[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GroupByCount_QueryError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewListingRepository(mock)

	dim := query.FacetDimension{Name: "brand", Column: "brand", Cap: 20}
	mock.ExpectQuery("SELECT brand, count").
		WithArgs("product", "active", 20).
		WillReturnError(errors.New("canceling statement due to statement timeout"))

	_, err := repo.GroupByCount(context.Background(), dim, activePredicate())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
