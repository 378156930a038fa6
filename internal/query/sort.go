package query

import (
	"github.com/briannzioki/qwiksale-listings/internal/domain"
)

// OrderBy maps a sort keyword to a fully tie-broken ORDER BY clause. Every
// order ends in "id DESC" so rows with equal sort keys still paginate
// without skips or duplicates. Null prices are pinned last in both price
// directions instead of relying on the store default.
func OrderBy(sort string) string {
	switch sort {
	case domain.SortFeatured:
		return "featured DESC, created_at DESC, id DESC"
	case domain.SortPriceAsc:
		return "price ASC NULLS LAST, created_at DESC, id DESC"
	case domain.SortPriceDesc:
		return "price DESC NULLS LAST, created_at DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}
