package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
)

func TestOrderBy_Orders(t *testing.T) {
	tests := []struct {
		sort string
		want string
	}{
		{domain.SortNewest, "created_at DESC, id DESC"},
		{domain.SortFeatured, "featured DESC, created_at DESC, id DESC"},
		{domain.SortPriceAsc, "price ASC NULLS LAST, created_at DESC, id DESC"},
		{domain.SortPriceDesc, "price DESC NULLS LAST, created_at DESC, id DESC"},
		{"garbage", "created_at DESC, id DESC"},
		{"", "created_at DESC, id DESC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OrderBy(tt.sort), "sort=%q", tt.sort)
	}
}

func TestOrderBy_AlwaysEndsWithIDTieBreak(t *testing.T) {
	for _, sort := range []string{domain.SortNewest, domain.SortFeatured, domain.SortPriceAsc, domain.SortPriceDesc, "junk"} {
		assert.True(t, strings.HasSuffix(OrderBy(sort), "id DESC"), "sort=%q", sort)
	}
}

func TestOrderBy_PriceSortsPinNullsLast(t *testing.T) {
	assert.Contains(t, OrderBy(domain.SortPriceAsc), "NULLS LAST")
	assert.Contains(t, OrderBy(domain.SortPriceDesc), "NULLS LAST")
}
