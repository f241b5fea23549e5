package service

import (
	"testing"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(country, region, city string) domain.Address {
	return domain.Address{CountryName: country, RegionName: region, City: city}
}

func TestCorrectFacets_FilteredDimensionUsesAllCandidates(t *testing.T) {
	raw := []domain.FacetResult{
		{Field: "country", Terms: []domain.FacetTerm{{Term: "USA", Count: 12}, {Term: "Canada", Count: 7}}},
	}
	filters, err := filter.Parse(`country:"USA"`)
	require.NoError(t, err)

	filtered := []domain.Address{addr("USA", "Washington", "Seattle")}
	all := []domain.Address{
		addr("USA", "Washington", "Seattle"),
		addr("usa", "Oregon", "Portland"),
		addr("Canada", "Ontario", "Toronto"),
	}

	got := CorrectFacets(raw, filters, filtered, all)

	assert.Equal(t, []domain.FacetResult{
		{Field: "country", Terms: []domain.FacetTerm{{Term: "USA", Count: 2}, {Term: "Canada", Count: 1}}},
	}, got)
}

func TestCorrectFacets_ListAndNegatedFiltersCountAsFiltered(t *testing.T) {
	raw := []domain.FacetResult{
		{Field: "country", Terms: []domain.FacetTerm{{Term: "USA", Count: 12}, {Term: "Canada", Count: 7}}},
		{Field: "city", Terms: []domain.FacetTerm{{Term: "Seattle", Count: 4}, {Term: "Toronto", Count: 2}}},
	}
	filters, err := filter.Parse(`country:(USA,Mexico) !city:Portland`)
	require.NoError(t, err)

	filtered := []domain.Address{addr("USA", "Washington", "Seattle")}
	all := []domain.Address{
		addr("USA", "Washington", "Seattle"),
		addr("USA", "Washington", "Seattle"),
		addr("Canada", "Ontario", "Toronto"),
	}

	got := CorrectFacets(raw, filters, filtered, all)

	assert.Equal(t, []domain.FacetResult{
		{Field: "country", Terms: []domain.FacetTerm{{Term: "USA", Count: 2}, {Term: "Canada", Count: 1}}},
		{Field: "city", Terms: []domain.FacetTerm{{Term: "Seattle", Count: 2}, {Term: "Toronto", Count: 1}}},
	}, got)
}

func TestCorrectFacets_UnsupportedTermsAreDropped(t *testing.T) {
	raw := []domain.FacetResult{
		{Field: "country", Terms: []domain.FacetTerm{{Term: "USA", Count: 12}, {Term: "Canada", Count: 7}}},
	}
	filters, err := filter.Parse(`country:"USA"`)
	require.NoError(t, err)

	filtered := []domain.Address{addr("USA", "", "Seattle")}
	all := []domain.Address{addr("USA", "", "Seattle")}

	got := CorrectFacets(raw, filters, filtered, all)

	assert.Equal(t, []domain.FacetTerm{{Term: "USA", Count: 1}}, got[0].Terms)
}

func TestCorrectFacets_UnfilteredDimensionUsesFilteredResults(t *testing.T) {
	raw := []domain.FacetResult{
		{Field: "city", Terms: []domain.FacetTerm{{Term: "Seattle", Count: 4}, {Term: "Tacoma", Count: 3}}},
		{Field: "region", Terms: []domain.FacetTerm{{Term: "Washington", Count: 7}}},
	}
	filters, err := filter.Parse(`country:"USA"`)
	require.NoError(t, err)

	filtered := []domain.Address{
		addr("USA", "Washington", "SEATTLE"),
		addr("USA", "Washington", "Seattle"),
	}
	all := []domain.Address{
		addr("USA", "Washington", "Seattle"),
		addr("USA", "Washington", "Tacoma"),
		addr("USA", "Washington", "Tacoma"),
	}

	got := CorrectFacets(raw, filters, filtered, all)

	assert.Equal(t, []domain.FacetResult{
		{Field: "city", Terms: []domain.FacetTerm{{Term: "Seattle", Count: 2}}},
		{Field: "region", Terms: []domain.FacetTerm{{Term: "Washington", Count: 2}}},
	}, got)
}

func TestCorrectFacets_OtherFieldsUntouched(t *testing.T) {
	raw := []domain.FacetResult{
		{Field: "brand", Terms: []domain.FacetTerm{{Term: "Acme", Count: 3}}},
	}

	got := CorrectFacets(raw, nil, nil, nil)

	assert.Equal(t, raw, got)
	got[0].Terms[0].Count = 99
	assert.Equal(t, 3, raw[0].Terms[0].Count)
}

func TestCorrectFacets_DoesNotMutateRaw(t *testing.T) {
	raw := []domain.FacetResult{
		{Field: "Country", Terms: []domain.FacetTerm{{Term: "Canada", Count: 7}, {Term: "USA", Count: 1}}},
	}

	got := CorrectFacets(raw, nil, []domain.Address{addr("USA", "", ""), addr("USA", "", "")}, nil)

	assert.Equal(t, []domain.FacetTerm{{Term: "Canada", Count: 7}, {Term: "USA", Count: 1}}, raw[0].Terms)
	assert.Equal(t, []domain.FacetResult{{Field: "Country", Terms: []domain.FacetTerm{{Term: "USA", Count: 2}}}}, got)
}
