package store

import (
	"sort"
	"strings"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
)

// ParseFacets splits a facet specification such as "country, city" into field names
func ParseFacets(spec string) []string {
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})

	seen := make(map[string]struct{}, len(fields))
	result := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(f)
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		result = append(result, f)
	}
	return result
}

// CountFacets aggregates address facet terms over the locations.
// Terms are ordered by count, then alphabetically. Fields that are not
// address dimensions produce no facet.
func CountFacets(locations []domain.PickupLocation, fields []string) []domain.FacetResult {
	result := make([]domain.FacetResult, 0, len(fields))
	for _, field := range fields {
		if !domain.IsAddressFacetField(field) {
			continue
		}

		counts := make(map[string]int)
		var order []string
		for _, location := range locations {
			value, _ := domain.AddressFacetValue(location.Address, field)
			if value == "" {
				continue
			}
			if _, seen := counts[value]; !seen {
				order = append(order, value)
			}
			counts[value]++
		}
		terms := make([]domain.FacetTerm, 0, len(order))
		for _, value := range order {
			terms = append(terms, domain.FacetTerm{Term: value, Count: counts[value]})
		}
		SortFacetTerms(terms)
		result = append(result, domain.FacetResult{Field: field, Terms: terms})
	}
	return result
}

// SortFacetTerms orders terms by count descending, then by term
func SortFacetTerms(terms []domain.FacetTerm) {
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
}

// SortLocations applies an explicit sort expression such as "name:desc;city"
// to the locations. Unknown fields are ignored, an empty expression keeps the
// order unchanged.
func SortLocations(locations []domain.PickupLocation, expr string) {
	keys := parseSort(expr)
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(locations, func(i, j int) bool {
		for _, k := range keys {
			a, b := sortValue(locations[i], k.field), sortValue(locations[j], k.field)
			if a == b {
				continue
			}
			if k.desc {
				return a > b
			}
			return a < b
		}
		return false
	})
}

type sortKey struct {
	field string
	desc  bool
}

func parseSort(expr string) []sortKey {
	var keys []sortKey
	for _, part := range strings.Split(expr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		keys = append(keys, sortKey{
			field: strings.ToLower(strings.TrimSpace(field)),
			desc:  strings.EqualFold(strings.TrimSpace(dir), "desc"),
		})
	}
	return keys
}

func sortValue(location domain.PickupLocation, field string) string {
	if field == "name" {
		return strings.ToLower(location.Name)
	}
	value, _ := domain.AddressFacetValue(location.Address, field)
	return strings.ToLower(value)
}
