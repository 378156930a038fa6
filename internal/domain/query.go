package domain

// Sort keywords accepted by the browse endpoints.
const (
	SortNewest    = "newest"
	SortFeatured  = "featured"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// Pagination bounds. Values outside these ranges are clamped during
// normalization, never rejected.
const (
	DefaultPage     = 1
	MaxPage         = 10000
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// ListingQuery is the normalized browse request. It is built once per
// request by the normalizer and never mutated afterwards; the predicate
// compiler and sort resolver are pure functions of it.
type ListingQuery struct {
	Kind ListingKind

	// Search is the free-text query, trimmed; empty means no search.
	Search string

	Category    string
	Subcategory string
	Brand       string
	Condition   string

	FeaturedOnly bool

	// MinPrice and MaxPrice are nil when the bound is absent.
	MinPrice *int64
	MaxPrice *int64

	Sort     string
	Page     int
	PageSize int

	IncludeFacets bool
}

// FacetEntry is a single value/count pair within one facet dimension.
type FacetEntry struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// PageResult is the browse response envelope. Facets is nil unless the
// request asked for them.
type PageResult struct {
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	Total      int64                   `json:"total"`
	TotalPages int                     `json:"total_pages"`
	Items      []Listing               `json:"items"`
	Facets     map[string][]FacetEntry `json:"facets,omitempty"`
}

// TotalPages computes the page count for a result set. It is at least 1
// even for an empty result so callers never special-case zero totals.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		return 1
	}
	return pages
}
