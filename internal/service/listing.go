package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/briannzioki/qwiksale-listings/internal/cache"
	"github.com/briannzioki/qwiksale-listings/internal/domain"
	"github.com/briannzioki/qwiksale-listings/internal/event"
	"github.com/briannzioki/qwiksale-listings/internal/query"
	"github.com/briannzioki/qwiksale-listings/internal/repository"
	apperrors "github.com/briannzioki/qwiksale-listings/pkg/errors"
	"github.com/briannzioki/qwiksale-listings/pkg/slug"
)

// ListingService implements the business logic for browsing and managing
// marketplace listings.
type ListingService struct {
	repo     repository.ListingRepository
	producer *event.Producer
	// cache is optional; nil disables browse caching.
	cache  *cache.BrowseCache
	logger *slog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(repo repository.ListingRepository, producer *event.Producer, browseCache *cache.BrowseCache, logger *slog.Logger) *ListingService {
	return &ListingService{
		repo:     repo,
		producer: producer,
		cache:    browseCache,
		logger:   logger,
	}
}

// Browse runs the full query pipeline for one listing kind: normalize the
// raw parameters, compile the predicate, then issue the count, page and
// facet queries concurrently and assemble the result envelope.
//
// Malformed parameters never fail a browse; they degrade to defaults during
// normalization. Only count/select failures surface to the caller. A facet
// dimension that cannot be computed comes back as an empty list.
func (s *ListingService) Browse(ctx context.Context, kind domain.ListingKind, params map[string]string) (*domain.PageResult, error) {
	q := query.Normalize(kind, params)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, q); err != nil {
			s.logger.WarnContext(ctx, "browse cache read failed",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
		} else if cached != nil {
			return cached, nil
		}
	}

	pred := query.Compile(q)
	orderBy := query.OrderBy(q.Sort)
	offset := (q.Page - 1) * q.PageSize

	var (
		total int64
		items []domain.Listing
	)

	// Count, page and facet queries depend only on the compiled predicate,
	// so they run concurrently. Cancelling the request cancels all of them.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, pred)
		if err != nil {
			return fmt.Errorf("count listings: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		items, err = s.repo.SelectPage(gctx, pred, orderBy, offset, q.PageSize)
		if err != nil {
			return fmt.Errorf("select listing page: %w", err)
		}
		return nil
	})

	var (
		desc         query.Descriptor
		facetEntries [][]domain.FacetEntry
	)
	if q.IncludeFacets {
		desc = query.ForKind(kind)
		// Each goroutine writes only its own slot; the map is built after
		// Wait to avoid concurrent map writes.
		facetEntries = make([][]domain.FacetEntry, len(desc.FacetDimensions))

		for i, dim := range desc.FacetDimensions {
			i, dim := i, dim
			g.Go(func() error {
				entries, err := s.repo.GroupByCount(gctx, dim, pred)
				if err != nil {
					// A failed dimension degrades to an empty list; it
					// never fails the whole request.
					s.logger.WarnContext(gctx, "facet aggregation failed",
						slog.String("kind", string(kind)),
						slog.String("dimension", dim.Name),
						slog.String("error", err.Error()),
					)
					return nil
				}
				facetEntries[i] = entries
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "browse query failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.QueryFailed(err)
	}

	var facets map[string][]domain.FacetEntry
	if q.IncludeFacets {
		facets = make(map[string][]domain.FacetEntry, len(desc.FacetDimensions))
		for i, dim := range desc.FacetDimensions {
			if facetEntries[i] == nil {
				facetEntries[i] = []domain.FacetEntry{}
			}
			facets[dim.Name] = facetEntries[i]
		}
	}

	result := &domain.PageResult{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: domain.TotalPages(total, q.PageSize),
		Items:      items,
		Facets:     facets,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, q, result); err != nil {
			s.logger.WarnContext(ctx, "browse cache write failed",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}

// CreateListingInput holds the parameters for creating a listing.
type CreateListingInput struct {
	Kind        domain.ListingKind
	Name        string
	Description *string
	Category    *string
	Subcategory *string
	Price       *int64
	Featured    bool
	Location    *string

	Brand     *string
	Condition *string

	RateType     *string
	Availability *string
	ServiceArea  *string

	SellerID *string
}

// UpdateListingInput holds the parameters for updating a listing. Nil
// fields are left unchanged.
type UpdateListingInput struct {
	Name        *string
	Description *string
	Category    *string
	Subcategory *string
	Price       *int64
	Featured    *bool
	Location    *string
	Status      *string

	Brand     *string
	Condition *string

	RateType     *string
	Availability *string
	ServiceArea  *string
}

// CreateListing creates a new listing with the given input.
func (s *ListingService) CreateListing(ctx context.Context, input *CreateListingInput) (*domain.Listing, error) {
	if !domain.IsValidKind(string(input.Kind)) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid listing kind %q", input.Kind))
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("listing name is required")
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:          uuid.NewString(),
		Kind:        input.Kind,
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Price:       input.Price,
		Featured:    input.Featured,
		Location:    input.Location,
		Status:      domain.StatusActive,
		SellerID:    input.SellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	switch input.Kind {
	case domain.KindProduct:
		listing.Brand = input.Brand
		listing.Condition = input.Condition
	case domain.KindService:
		listing.RateType = input.RateType
		listing.Availability = input.Availability
		listing.ServiceArea = input.ServiceArea
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	if err := s.producer.PublishListingCreated(ctx, listing); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish listing.created event",
			slog.String("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.invalidateBrowseCache(ctx, listing.Kind)

	s.logger.InfoContext(ctx, "listing created",
		slog.String("listing_id", listing.ID),
		slog.String("kind", string(listing.Kind)),
		slog.String("slug", listing.Slug),
	)

	return listing, nil
}

// GetListing retrieves a listing by its ID.
func (s *ListingService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing by id: %w", err)
	}
	return listing, nil
}

// GetListingBySlug retrieves a listing by its slug.
func (s *ListingService) GetListingBySlug(ctx context.Context, slugStr string) (*domain.Listing, error) {
	listing, err := s.repo.GetBySlug(ctx, slugStr)
	if err != nil {
		return nil, fmt.Errorf("get listing by slug: %w", err)
	}
	return listing, nil
}

// UpdateListing applies partial updates to an existing listing.
func (s *ListingService) UpdateListing(ctx context.Context, id string, input *UpdateListingInput) (*domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing for update: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.InvalidInput("listing name must not be empty")
		}
		listing.Name = strings.TrimSpace(*input.Name)
		listing.Slug = slug.Generate(listing.Name)
	}

	if input.Description != nil {
		listing.Description = input.Description
	}
	if input.Category != nil {
		listing.Category = input.Category
	}
	if input.Subcategory != nil {
		listing.Subcategory = input.Subcategory
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		listing.Price = input.Price
	}
	if input.Featured != nil {
		listing.Featured = *input.Featured
	}
	if input.Location != nil {
		listing.Location = input.Location
	}

	if input.Status != nil {
		if !domain.IsValidStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", *input.Status, strings.Join(domain.ValidStatuses(), ", ")))
		}
		listing.Status = *input.Status
	}

	switch listing.Kind {
	case domain.KindProduct:
		if input.Brand != nil {
			listing.Brand = input.Brand
		}
		if input.Condition != nil {
			listing.Condition = input.Condition
		}
	case domain.KindService:
		if input.RateType != nil {
			listing.RateType = input.RateType
		}
		if input.Availability != nil {
			listing.Availability = input.Availability
		}
		if input.ServiceArea != nil {
			listing.ServiceArea = input.ServiceArea
		}
	}

	listing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	if err := s.producer.PublishListingUpdated(ctx, listing); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish listing.updated event",
			slog.String("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateBrowseCache(ctx, listing.Kind)

	s.logger.InfoContext(ctx, "listing updated",
		slog.String("listing_id", listing.ID),
		slog.String("slug", listing.Slug),
	)

	return listing, nil
}

// DeleteListing removes a listing by its ID.
func (s *ListingService) DeleteListing(ctx context.Context, id string) error {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get listing for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if err := s.producer.PublishListingDeleted(ctx, id, listing.Kind); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish listing.deleted event",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateBrowseCache(ctx, listing.Kind)

	s.logger.InfoContext(ctx, "listing deleted",
		slog.String("listing_id", id),
	)

	return nil
}

func (s *ListingService) invalidateBrowseCache(ctx context.Context, kind domain.ListingKind) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, kind); err != nil {
		s.logger.WarnContext(ctx, "browse cache invalidation failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}
