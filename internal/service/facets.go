package service

import (
	"strings"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/filter"
	"github.com/fjod/go_cart/pickup-service/internal/store"
)

// CorrectFacets recomputes the address facet terms reported by the index so they
// describe the locations that survived the availability rules.
//
// filtered holds the surviving locations of the filtered search and all the
// surviving locations of the search without keyword and filter. A dimension the
// filter targets is counted over all, any other dimension over filtered. Terms
// without support in the chosen source are dropped. Facets on fields that are
// not address dimensions are returned unchanged. raw is never modified.
func CorrectFacets(raw []domain.FacetResult, filters []filter.TermFilter, filtered, all []domain.Address) []domain.FacetResult {
	corrected := make([]domain.FacetResult, 0, len(raw))
	for _, facet := range raw {
		field := strings.ToLower(facet.Field)
		if !domain.IsAddressFacetField(field) {
			corrected = append(corrected, copyFacet(facet))
			continue
		}

		source := filtered
		if filter.HasTermFilter(filters, field) {
			source = all
		}
		corrected = append(corrected, domain.FacetResult{
			Field: facet.Field,
			Terms: recountTerms(facet.Terms, field, source),
		})
	}
	return corrected
}

func recountTerms(terms []domain.FacetTerm, field string, source []domain.Address) []domain.FacetTerm {
	result := make([]domain.FacetTerm, 0, len(terms))
	for _, term := range terms {
		count := 0
		for _, address := range source {
			value, _ := domain.AddressFacetValue(address, field)
			if strings.EqualFold(value, term.Term) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		result = append(result, domain.FacetTerm{Term: term.Term, Count: count})
	}
	store.SortFacetTerms(result)
	return result
}

func copyFacet(facet domain.FacetResult) domain.FacetResult {
	terms := make([]domain.FacetTerm, len(facet.Terms))
	copy(terms, facet.Terms)
	return domain.FacetResult{Field: facet.Field, Terms: terms}
}

func addressesOf(resolved []resolvedLocation) []domain.Address {
	addresses := make([]domain.Address, len(resolved))
	for i, r := range resolved {
		addresses[i] = r.location.Address
	}
	return addresses
}
