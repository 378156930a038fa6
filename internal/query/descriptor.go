// Package query turns raw browse parameters into normalized queries, SQL
// predicates and sort orders for marketplace listings. Everything in this
// package is a pure function; no state is shared between requests.
package query

import (
	"github.com/briannzioki/qwiksale-listings/internal/domain"
)

// FacetDimension describes one attribute the browse endpoint can aggregate
// counts over.
type FacetDimension struct {
	// Name is the key used in the response facets map.
	Name string
	// Column is the listings table column grouped on.
	Column string
	// Cap bounds how many entries the dimension may return.
	Cap int
}

// Descriptor parameterizes the engine per listing kind: which columns the
// tokenized search scans, which filters apply and which dimensions can be
// faceted. Product and service browsing share all other behavior.
type Descriptor struct {
	Kind            domain.ListingKind
	SearchColumns   []string
	FacetDimensions []FacetDimension

	// HasBrand and HasCondition gate the product-only filters; the
	// normalizer drops those parameters for kinds that lack them.
	HasBrand     bool
	HasCondition bool
}

var (
	productDescriptor = Descriptor{
		Kind:          domain.KindProduct,
		SearchColumns: []string{"name", "description", "category", "subcategory", "brand", "location"},
		FacetDimensions: []FacetDimension{
			{Name: "category", Column: "category", Cap: 20},
			{Name: "brand", Column: "brand", Cap: 20},
			{Name: "condition", Column: "condition", Cap: 5},
		},
		HasBrand:     true,
		HasCondition: true,
	}

	serviceDescriptor = Descriptor{
		Kind:          domain.KindService,
		SearchColumns: []string{"name", "description", "category", "subcategory", "location", "availability", "service_area"},
		FacetDimensions: []FacetDimension{
			{Name: "category", Column: "category", Cap: 20},
			{Name: "subcategory", Column: "subcategory", Cap: 20},
		},
	}
)

// ForKind returns the descriptor for the given listing kind. Unknown kinds
// fall back to the product descriptor; callers validate the kind before
// reaching this layer.
func ForKind(kind domain.ListingKind) Descriptor {
	if kind == domain.KindService {
		return serviceDescriptor
	}
	return productDescriptor
}
