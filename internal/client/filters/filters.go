// Package filters aggregates the search inputs into one SearchCriteria.
package filters

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/cascade"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.uber.org/zap"
)

// Filters holds the search form state. The location part is delegated to an
// embedded cascade. Emitted criteria are delivered to the OnChange callback.
type Filters struct {
	*cascade.Cascade

	log      *logger.Logger
	mu       sync.Mutex
	keyword  string
	category int64
	minPrice *float64
	maxPrice *float64
	onChange func(domain.SearchCriteria)
}

// New creates empty filters. onChange may be nil.
func New(lookup domain.LocationService, log *logger.Logger, onChange func(domain.SearchCriteria)) *Filters {
	return &Filters{
		Cascade:  cascade.New(lookup, log),
		log:      log.Named("filters"),
		onChange: onChange,
	}
}

func (f *Filters) SetKeyword(keyword string) {
	f.mu.Lock()
	f.keyword = strings.TrimSpace(keyword)
	f.mu.Unlock()
}

// SetCategory selects a category; zero or negative clears it.
func (f *Filters) SetCategory(id int64) {
	if id < 0 {
		id = 0
	}
	f.mu.Lock()
	f.category = id
	f.mu.Unlock()
}

// SetMinPrice accepts a non-negative number or an empty string (no bound).
// Invalid input leaves the field unchanged.
func (f *Filters) SetMinPrice(input string) error {
	return f.setPrice(&f.minPrice, "minPrice", input)
}

// SetMaxPrice behaves like SetMinPrice. A max below the min is accepted.
func (f *Filters) SetMaxPrice(input string) error {
	return f.setPrice(&f.maxPrice, "maxPrice", input)
}

func (f *Filters) setPrice(dst **float64, field, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		f.mu.Lock()
		*dst = nil
		f.mu.Unlock()
		return nil
	}
	p, err := ParsePrice(input)
	if err != nil {
		f.log.Debug("Rejected price input", zap.String("field", field), zap.String("input", input))
		return fmt.Errorf("%s: %w", field, err)
	}
	f.mu.Lock()
	*dst = &p
	f.mu.Unlock()
	return nil
}

// ParsePrice parses a non-negative decimal number the way the search
// endpoint does.
func ParsePrice(input string) (float64, error) {
	return domain.ParsePrice(input)
}

// Criteria returns the current values without emitting them.
func (f *Filters) Criteria() domain.SearchCriteria {
	region, district, city := f.Cascade.Selected()

	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.SearchCriteria{
		Keyword:    f.keyword,
		CategoryID: f.category,
		RegionID:   region,
		DistrictID: district,
		CityID:     city,
	}
	if f.minPrice != nil {
		v := *f.minPrice
		c.MinPrice = &v
	}
	if f.maxPrice != nil {
		v := *f.maxPrice
		c.MaxPrice = &v
	}
	return c
}

// Apply emits the current values. Empty fields are omitted.
func (f *Filters) Apply() domain.SearchCriteria {
	c := f.Criteria()
	f.emit(c)
	return c
}

// Reset clears every field including the location options and emits an
// empty criteria object.
func (f *Filters) Reset() domain.SearchCriteria {
	f.mu.Lock()
	f.keyword = ""
	f.category = 0
	f.minPrice = nil
	f.maxPrice = nil
	f.mu.Unlock()
	f.Cascade.Reset()

	c := domain.SearchCriteria{}
	f.emit(c)
	return c
}

func (f *Filters) emit(c domain.SearchCriteria) {
	f.log.Debug("Search criteria emitted", zap.Int("constraints", c.Constraints()))
	if f.onChange != nil {
		f.onChange(c)
	}
}
