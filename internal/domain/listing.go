package domain

import (
	"time"
)

// ListingKind discriminates the two listing variants that share the
// listings table.
type ListingKind string

const (
	KindProduct ListingKind = "product"
	KindService ListingKind = "service"
)

// IsValidKind checks whether the given string names a known listing kind.
func IsValidKind(kind string) bool {
	switch ListingKind(kind) {
	case KindProduct, KindService:
		return true
	}
	return false
}

// Listing status constants.
const (
	StatusActive   = "active"
	StatusSold     = "sold"
	StatusHidden   = "hidden"
	StatusDraft    = "draft"
	StatusArchived = "archived"
)

// Product condition values.
const (
	ConditionBrandNew = "brand new"
	ConditionPreOwned = "pre-owned"
)

// Service rate type values.
const (
	RateTypeHour  = "hour"
	RateTypeDay   = "day"
	RateTypeFixed = "fixed"
)

// Listing represents a marketplace listing. Product and service listings
// share this shape; the kind-specific attributes are nullable and only
// populated for the matching kind.
type Listing struct {
	ID          string      `json:"id"`
	Kind        ListingKind `json:"kind"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description *string     `json:"description"`
	Category    *string     `json:"category"`
	Subcategory *string     `json:"subcategory"`
	// Price in KES; nil means "contact for price".
	Price    *int64  `json:"price"`
	Featured bool    `json:"featured"`
	Location *string `json:"location"`
	Status   string  `json:"status"`

	// Product-only attributes.
	Brand     *string `json:"brand,omitempty"`
	Condition *string `json:"condition,omitempty"`

	// Service-only attributes.
	RateType     *string `json:"rate_type,omitempty"`
	Availability *string `json:"availability,omitempty"`
	ServiceArea  *string `json:"service_area,omitempty"`

	SellerID  *string   `json:"seller_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidStatuses returns the set of valid listing statuses.
func ValidStatuses() []string {
	return []string{StatusActive, StatusSold, StatusHidden, StatusDraft, StatusArchived}
}

// IsValidStatus checks whether the given status string is a valid listing status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
