package domain

import "strings"

// Facet fields the index exposes for pickup location addresses
const (
	FacetCountry = "country"
	FacetRegion  = "region"
	FacetCity    = "city"
)

// AddressFacetFields lists the address dimensions whose counts are recomputed after business rules
var AddressFacetFields = []string{FacetCountry, FacetRegion, FacetCity}

// IsAddressFacetField reports whether the field is one of AddressFacetFields, ignoring case
func IsAddressFacetField(field string) bool {
	for _, f := range AddressFacetFields {
		if strings.EqualFold(f, field) {
			return true
		}
	}
	return false
}

// AddressFacetValue returns the address value behind a facet field.
// ok is false for fields that are not address dimensions.
func AddressFacetValue(a Address, field string) (value string, ok bool) {
	switch strings.ToLower(field) {
	case FacetCountry:
		return a.CountryName, true
	case FacetRegion:
		return a.RegionName, true
	case FacetCity:
		return a.City, true
	default:
		return "", false
	}
}
