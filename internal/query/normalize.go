package query

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
)

// Normalize sanitizes raw, possibly hostile, browse parameters into a
// ListingQuery. It never fails: malformed values fall back to defaults or
// are dropped, unknown keys are ignored. This keeps bad query strings from
// ever turning into 4xx or 5xx responses.
func Normalize(kind domain.ListingKind, params map[string]string) domain.ListingQuery {
	desc := ForKind(kind)

	q := domain.ListingQuery{
		Kind:        kind,
		Search:      cleanText(params["q"]),
		Category:    cleanText(params["category"]),
		Subcategory: cleanText(params["subcategory"]),
		Sort:        normalizeSort(params["sort"]),
		Page:        clampInt(params["page"], domain.DefaultPage, 1, domain.MaxPage),
		PageSize:    clampInt(params["pageSize"], domain.DefaultPageSize, 1, domain.MaxPageSize),
		MinPrice:    parsePrice(params["minPrice"]),
		MaxPrice:    parsePrice(params["maxPrice"]),
	}

	if desc.HasBrand {
		q.Brand = cleanText(params["brand"])
	}
	if desc.HasCondition {
		q.Condition = cleanText(params["condition"])
	}

	q.FeaturedOnly = parseBool(params["featuredOnly"])
	q.IncludeFacets = parseBool(params["includeFacets"])

	return q
}

// cleanText trims whitespace and strips control characters. All-whitespace
// input normalizes to the empty string, which downstream code treats as
// "absent".
func cleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// clampInt parses raw as an integer and clamps it to [min, max]. Non-numeric
// input yields the default.
func clampInt(raw string, def, min, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// parsePrice parses a price bound. Non-numeric or negative input means the
// bound is absent, never zero.
func parsePrice(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func normalizeSort(raw string) string {
	switch strings.TrimSpace(raw) {
	case domain.SortFeatured:
		return domain.SortFeatured
	case domain.SortPriceAsc:
		return domain.SortPriceAsc
	case domain.SortPriceDesc:
		return domain.SortPriceDesc
	default:
		return domain.SortNewest
	}
}
