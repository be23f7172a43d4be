package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCriteria_EmptyByDefault(t *testing.T) {
	var c SearchCriteria
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Constraints())
	assert.Empty(t, c.Values())
}

func TestSearchCriteria_ValuesRoundTrip(t *testing.T) {
	minPrice, maxPrice := 10.5, 200.0
	c := SearchCriteria{
		Keyword:    "bike",
		CategoryID: 2,
		RegionID:   1,
		DistrictID: 10,
		CityID:     100,
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
	}
	assert.Equal(t, 7, c.Constraints())

	v := c.Values()
	assert.Equal(t, "10.5", v.Get("minPrice"))
	assert.Equal(t, "200", v.Get("maxPrice"))
	assert.Equal(t, "100", v.Get("cityId"))

	parsed, err := ParseCriteria(v)
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestParseCriteria_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non numeric id", "cityId=minsk"},
		{"negative id", "regionId=-1"},
		{"bad price", "minPrice=cheap"},
		{"negative price", "maxPrice=-5"},
		{"nan price", "minPrice=NaN"},
		{"infinite price", "maxPrice=Inf"},
		{"negative infinity", "minPrice=-Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			_, err = ParseCriteria(v)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, p)

	for _, in := range []string{"NaN", "nan", "+Inf", "Infinity", "-1", "1e309", ""} {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

func TestParseCriteria_TrimsKeyword(t *testing.T) {
	c, err := ParseCriteria(url.Values{"keyword": {"  phone "}})
	require.NoError(t, err)
	assert.Equal(t, "phone", c.Keyword)
	assert.Equal(t, 1, c.Constraints())
}
