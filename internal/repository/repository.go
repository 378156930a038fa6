package repository

import (
	"context"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
	"github.com/briannzioki/qwiksale-listings/internal/query"
)

// ListingRepository defines the interface for listing persistence and the
// query operations the browse engine needs from the store.
type ListingRepository interface {
	// Create inserts a new listing into the store.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// GetBySlug retrieves a listing by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Listing, error)

	// Update modifies an existing listing in the store.
	Update(ctx context.Context, listing *domain.Listing) error

	// Delete removes a listing from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// Count returns how many rows match the predicate.
	Count(ctx context.Context, pred query.Predicate) (int64, error)

	// SelectPage returns one ordered page of rows matching the predicate.
	SelectPage(ctx context.Context, pred query.Predicate, orderBy string, offset, limit int) ([]domain.Listing, error)

	// GroupByCount returns value/count pairs for one facet dimension over
	// the rows matching the predicate, excluding null values, sorted by
	// descending count and capped at limit entries.
	GroupByCount(ctx context.Context, dim query.FacetDimension, pred query.Predicate) ([]domain.FacetEntry, error)
}
