package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
	"github.com/briannzioki/qwiksale-listings/internal/query"
	"github.com/briannzioki/qwiksale-listings/internal/repository"
	"github.com/briannzioki/qwiksale-listings/pkg/database"
	apperrors "github.com/briannzioki/qwiksale-listings/pkg/errors"
)

// placeholderName stands in for listings saved without a title so browse
// results never render an empty card.
const placeholderName = "Untitled listing"

const listingColumns = `id, kind, name, slug, description, category, subcategory, price, featured, location, status,
	brand, condition, rate_type, availability, service_area, seller_id, created_at, updated_at`

// ListingRepository implements repository.ListingRepository using PostgreSQL.
type ListingRepository struct {
	pool database.DBTX
}

var _ repository.ListingRepository = (*ListingRepository)(nil)

// NewListingRepository creates a new PostgreSQL-backed listing repository.
func NewListingRepository(pool database.DBTX) *ListingRepository {
	return &ListingRepository{pool: pool}
}

// Create inserts a new listing into the database.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	stmt := fmt.Sprintf(`
		INSERT INTO listings (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		listingColumns,
	)

	ctx, end := database.TraceQuery(ctx, "CreateListing", stmt)
	_, err := r.pool.Exec(ctx, stmt,
		l.ID,
		l.Kind,
		l.Name,
		l.Slug,
		l.Description,
		l.Category,
		l.Subcategory,
		l.Price,
		l.Featured,
		l.Location,
		l.Status,
		l.Brand,
		l.Condition,
		l.RateType,
		l.Availability,
		l.ServiceArea,
		l.SellerID,
		l.CreatedAt,
		l.UpdatedAt,
	)
	end(err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("listing", "slug", l.Slug)
		}
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by its ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)

	ctx, end := database.TraceQuery(ctx, "GetListing", stmt)
	l, err := r.scanListing(r.pool.QueryRow(ctx, stmt, id))
	end(err)
	return l, err
}

// GetBySlug retrieves a listing by its slug.
func (r *ListingRepository) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM listings WHERE slug = $1`, listingColumns)

	ctx, end := database.TraceQuery(ctx, "GetListingBySlug", stmt)
	l, err := r.scanListing(r.pool.QueryRow(ctx, stmt, slug))
	end(err)
	return l, err
}

// Update modifies an existing listing in the database.
func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	stmt := `
		UPDATE listings
		SET name = $1, slug = $2, description = $3, category = $4, subcategory = $5,
		    price = $6, featured = $7, location = $8, status = $9, brand = $10,
		    condition = $11, rate_type = $12, availability = $13, service_area = $14,
		    updated_at = $15
		WHERE id = $16`

	ctx, end := database.TraceQuery(ctx, "UpdateListing", stmt)
	ct, err := r.pool.Exec(ctx, stmt,
		l.Name,
		l.Slug,
		l.Description,
		l.Category,
		l.Subcategory,
		l.Price,
		l.Featured,
		l.Location,
		l.Status,
		l.Brand,
		l.Condition,
		l.RateType,
		l.Availability,
		l.ServiceArea,
		l.UpdatedAt,
		l.ID,
	)
	end(err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("listing", "slug", l.Slug)
		}
		return fmt.Errorf("update listing: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", l.ID)
	}

	return nil
}

// Delete removes a listing from the database by its ID.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	stmt := `DELETE FROM listings WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteListing", stmt)
	ct, err := r.pool.Exec(ctx, stmt, id)
	end(err)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", id)
	}

	return nil
}

// Count returns how many rows match the predicate.
func (r *ListingRepository) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	stmt := fmt.Sprintf(`SELECT count(*) FROM listings WHERE %s`, pred.Where)

	ctx, end := database.TraceQuery(ctx, "CountListings", stmt)
	var total int64
	err := r.pool.QueryRow(ctx, stmt, pred.Args...).Scan(&total)
	end(err)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}

	return total, nil
}

// SelectPage returns one ordered page of rows matching the predicate.
// orderBy comes from query.OrderBy and is never user input.
func (r *ListingRepository) SelectPage(ctx context.Context, pred query.Predicate, orderBy string, offset, limit int) ([]domain.Listing, error) {
	stmt := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		listingColumns, pred.Where, orderBy, pred.NextArg(), pred.NextArg()+1,
	)

	args := append(append([]any{}, pred.Args...), limit, offset)

	ctx, end := database.TraceQuery(ctx, "SelectListingPage", stmt)
	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("select listing page: %w", err)
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := r.scanListing(rows)
		if err != nil {
			end(err)
			return nil, err
		}
		listings = append(listings, *l)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}

	end(nil)
	return listings, nil
}

// GroupByCount returns value/count pairs for one facet dimension over the
// rows matching the predicate. Null values are excluded, entries come back
// sorted by descending count and capped at the dimension's limit.
func (r *ListingRepository) GroupByCount(ctx context.Context, dim query.FacetDimension, pred query.Predicate) ([]domain.FacetEntry, error) {
	stmt := fmt.Sprintf(`
		SELECT %s, count(*) AS entry_count
		FROM listings
		WHERE %s AND %s IS NOT NULL
		GROUP BY %s
		ORDER BY entry_count DESC, %s
		LIMIT $%d`,
		dim.Column, pred.Where, dim.Column, dim.Column, dim.Column, pred.NextArg(),
	)

	args := append(append([]any{}, pred.Args...), dim.Cap)

	ctx, end := database.TraceQuery(ctx, "FacetListings", stmt)
	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("facet %s: %w", dim.Name, err)
	}
	defer rows.Close()

	entries := []domain.FacetEntry{}
	for rows.Next() {
		var e domain.FacetEntry
		if err := rows.Scan(&e.Value, &e.Count); err != nil {
			end(err)
			return nil, fmt.Errorf("scan facet row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate facet rows: %w", err)
	}

	end(nil)
	return entries, nil
}

// scanListing maps one row into a Listing, coalescing a blank name into a
// placeholder so callers never see an untitled item.
func (r *ListingRepository) scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing

	err := row.Scan(
		&l.ID,
		&l.Kind,
		&l.Name,
		&l.Slug,
		&l.Description,
		&l.Category,
		&l.Subcategory,
		&l.Price,
		&l.Featured,
		&l.Location,
		&l.Status,
		&l.Brand,
		&l.Condition,
		&l.RateType,
		&l.Availability,
		&l.ServiceArea,
		&l.SellerID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}

	if strings.TrimSpace(l.Name) == "" {
		l.Name = placeholderName
	}

	return &l, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
