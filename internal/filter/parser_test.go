package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_QuotedValue(t *testing.T) {
	filters, err := Parse(`country:"USA"`)
	require.NoError(t, err)

	require.Len(t, filters, 1)
	assert.Equal(t, "country", filters[0].FieldName)
	assert.Equal(t, []string{"USA"}, filters[0].Values)
}

func TestParse_MultipleTermsAndValues(t *testing.T) {
	filters, err := Parse(`Country:"United States"  city:Seattle,Tacoma region:"WA","OR"`)
	require.NoError(t, err)

	require.Len(t, filters, 3)
	assert.Equal(t, TermFilter{FieldName: "country", Values: []string{"United States"}}, filters[0])
	assert.Equal(t, TermFilter{FieldName: "city", Values: []string{"Seattle", "Tacoma"}}, filters[1])
	assert.Equal(t, TermFilter{FieldName: "region", Values: []string{"WA", "OR"}}, filters[2])
}

func TestParse_Negated(t *testing.T) {
	filters, err := Parse(`!country:USA city:Seattle`)
	require.NoError(t, err)

	require.Len(t, filters, 2)
	assert.Equal(t, TermFilter{FieldName: "country", Values: []string{"USA"}, Negated: true}, filters[0])
	assert.Equal(t, TermFilter{FieldName: "city", Values: []string{"Seattle"}}, filters[1])
}

func TestParse_ParenthesizedList(t *testing.T) {
	filters, err := Parse(`country:(USA,Canada) city:( "New York" , Boston ) !region:(Oregon)`)
	require.NoError(t, err)

	require.Len(t, filters, 3)
	assert.Equal(t, TermFilter{FieldName: "country", Values: []string{"USA", "Canada"}}, filters[0])
	assert.Equal(t, TermFilter{FieldName: "city", Values: []string{"New York", "Boston"}}, filters[1])
	assert.Equal(t, TermFilter{FieldName: "region", Values: []string{"Oregon"}, Negated: true}, filters[2])
}

func TestParse_UnterminatedList(t *testing.T) {
	_, err := Parse(`country:(USA,Canada`)
	assert.ErrorIs(t, err, ErrUnterminatedList)
}

func TestParse_IgnoresFreeTextAndRanges(t *testing.T) {
	filters, err := Parse(`downtown "open late" storage_days:[1 TO 5] opened:(2020 TO 2024) city:Boston`)
	require.NoError(t, err)

	require.Len(t, filters, 1)
	assert.Equal(t, "city", filters[0].FieldName)
}

func TestParse_Empty(t *testing.T) {
	filters, err := Parse("   ")
	require.NoError(t, err)
	assert.Empty(t, filters)
}

func TestParse_EscapedQuote(t *testing.T) {
	filters, err := Parse(`city:"Say \"hi\""`)
	require.NoError(t, err)

	require.Len(t, filters, 1)
	assert.Equal(t, []string{`Say "hi"`}, filters[0].Values)
}

func TestParse_UnterminatedQuote(t *testing.T) {
	_, err := Parse(`country:"USA`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestParse_MissingField(t *testing.T) {
	_, err := Parse(`:USA`)
	assert.ErrorIs(t, err, ErrEmptyField)
}

func TestParse_FieldWithoutValue(t *testing.T) {
	filters, err := Parse(`country: city:Paris`)
	require.NoError(t, err)

	require.Len(t, filters, 1)
	assert.Equal(t, "city", filters[0].FieldName)
}

func TestHasTermFilter(t *testing.T) {
	filters := []TermFilter{{FieldName: "country", Values: []string{"USA"}}, {FieldName: "region", Values: []string{"Ohio"}, Negated: true}}

	assert.True(t, HasTermFilter(filters, "country"))
	assert.True(t, HasTermFilter(filters, "region"))
	assert.True(t, HasTermFilter(filters, "Country"))
	assert.False(t, HasTermFilter(filters, "city"))
	assert.False(t, HasTermFilter(nil, "city"))
}

func TestTermFilter_MatchesIgnoresCase(t *testing.T) {
	f := TermFilter{FieldName: "city", Values: []string{"Seattle"}}

	assert.True(t, f.Matches("seattle"))
	assert.False(t, f.Matches("Seattle WA"))
}

func TestTermFilter_NegatedMatches(t *testing.T) {
	f := TermFilter{FieldName: "country", Values: []string{"USA"}, Negated: true}

	assert.False(t, f.Matches("usa"))
	assert.True(t, f.Matches("Canada"))
	assert.True(t, f.Matches(""))
}
