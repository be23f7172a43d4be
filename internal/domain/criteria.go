package domain

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// SearchCriteria is the query built by the search filters. A zero ID, an
// empty keyword or a nil price means the field is unconstrained.
type SearchCriteria struct {
	Keyword    string   `json:"keyword,omitempty"`
	CategoryID int64    `json:"categoryId,omitempty"`
	RegionID   int64    `json:"regionId,omitempty"`
	DistrictID int64    `json:"districtId,omitempty"`
	CityID     int64    `json:"cityId,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
}

// Constraints returns the number of constraining fields.
func (c SearchCriteria) Constraints() int {
	n := 0
	if c.Keyword != "" {
		n++
	}
	for _, id := range []int64{c.CategoryID, c.RegionID, c.DistrictID, c.CityID} {
		if id > 0 {
			n++
		}
	}
	if c.MinPrice != nil {
		n++
	}
	if c.MaxPrice != nil {
		n++
	}
	return n
}

// IsEmpty reports whether the criteria constrain nothing.
func (c SearchCriteria) IsEmpty() bool {
	return c.Constraints() == 0
}

// Values encodes the criteria as URL query parameters, omitting empty fields.
func (c SearchCriteria) Values() url.Values {
	v := url.Values{}
	if c.Keyword != "" {
		v.Set("keyword", c.Keyword)
	}
	setID := func(key string, id int64) {
		if id > 0 {
			v.Set(key, strconv.FormatInt(id, 10))
		}
	}
	setID("categoryId", c.CategoryID)
	setID("regionId", c.RegionID)
	setID("districtId", c.DistrictID)
	setID("cityId", c.CityID)
	if c.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*c.MinPrice, 'f', -1, 64))
	}
	if c.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*c.MaxPrice, 'f', -1, 64))
	}
	return v
}

// ParseCriteria is the inverse of SearchCriteria.Values.
func ParseCriteria(v url.Values) (SearchCriteria, error) {
	var c SearchCriteria
	c.Keyword = strings.TrimSpace(v.Get("keyword"))

	ids := map[string]*int64{
		"categoryId": &c.CategoryID,
		"regionId":   &c.RegionID,
		"districtId": &c.DistrictID,
		"cityId":     &c.CityID,
	}
	for key, dst := range ids {
		raw := v.Get(key)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return SearchCriteria{}, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidInput, key)
		}
		*dst = id
	}

	prices := map[string]**float64{
		"minPrice": &c.MinPrice,
		"maxPrice": &c.MaxPrice,
	}
	for key, dst := range prices {
		raw := v.Get(key)
		if raw == "" {
			continue
		}
		p, err := ParsePrice(raw)
		if err != nil {
			return SearchCriteria{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = &p
	}
	return c, nil
}

// ParsePrice parses a finite non-negative decimal number.
func ParsePrice(input string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, input)
	}
	if p < 0 {
		return 0, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return p, nil
}

// AdFilter is the repository-level query. Location and category constraints
// are already expanded into concrete id sets by the caller.
type AdFilter struct {
	Keyword     string
	CategoryIDs []int64
	CityIDs     []int64
	SellerID    int64
	Status      AdStatus
	MinPrice    *float64
	MaxPrice    *float64
	Offset      int
	Limit       int
}
