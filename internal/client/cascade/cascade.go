// Package cascade implements the region → district → city selector where
// choosing a parent invalidates and reloads its descendants.
package cascade

import (
	"context"
	"errors"
	"sync"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.uber.org/zap"
)

// AllValue is the "all / none" option. Any id <= AllValue is treated as empty.
const AllValue int64 = 0

// ErrStale is delivered on a completion channel when a newer selection
// superseded the fetch and its result was discarded.
var ErrStale = errors.New("cascade: fetch superseded by a newer selection")

// Snapshot is a consistent copy of the cascade state.
type Snapshot struct {
	RegionID         int64
	DistrictID       int64
	CityID           int64
	Regions          []domain.Region
	Districts        []domain.District
	Cities           []domain.City
	DistrictsLoading bool
	CitiesLoading    bool
}

// Cascade is safe for concurrent use. Every parent setter clears the
// descendant state before it returns; option lists are fetched in the
// background and applied only if the fetch is still the latest one for its
// level and its parent is still selected.
type Cascade struct {
	lookup domain.LocationService
	log    *logger.Logger

	mu               sync.Mutex
	regionID         int64
	districtID       int64
	cityID           int64
	regions          []domain.Region
	districts        []domain.District
	cities           []domain.City
	districtsLoading bool
	citiesLoading    bool
	districtGen      uint64
	cityGen          uint64
}

// New creates an empty cascade.
func New(lookup domain.LocationService, log *logger.Logger) *Cascade {
	return &Cascade{lookup: lookup, log: log.Named("cascade")}
}

func normalize(id int64) int64 {
	if id <= AllValue {
		return 0
	}
	return id
}

func settled() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}

// LoadRegions fetches the top-level options.
func (c *Cascade) LoadRegions(ctx context.Context) error {
	regions, err := c.lookup.ListRegions(ctx)
	if err != nil {
		c.log.Warn("Failed to load regions", zap.Error(err))
		return err
	}
	c.mu.Lock()
	c.regions = regions
	c.mu.Unlock()
	return nil
}

// SetRegion selects a region, clears district, city and both option lists,
// and starts loading the districts of the new region.
func (c *Cascade) SetRegion(ctx context.Context, id int64) <-chan error {
	id = normalize(id)

	c.mu.Lock()
	c.regionID = id
	c.districtID = 0
	c.cityID = 0
	c.districts = nil
	c.cities = nil
	c.districtGen++
	c.cityGen++
	c.citiesLoading = false
	c.districtsLoading = id != 0
	gen := c.districtGen
	c.mu.Unlock()

	if id == 0 {
		return settled()
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		districts, err := c.lookup.ListDistricts(ctx, id)

		c.mu.Lock()
		current := gen == c.districtGen && c.regionID == id
		if current {
			c.districtsLoading = false
			if err == nil {
				c.districts = districts
			}
		}
		c.mu.Unlock()

		if !current {
			c.log.Debug("Discarding stale district options", zap.Int64("region_id", id))
			done <- ErrStale
			return
		}
		if err != nil {
			c.log.Warn("Failed to load districts", zap.Int64("region_id", id), zap.Error(err))
		}
		done <- err
	}()
	return done
}

// SetDistrict selects a district, clears the city and its options, and
// starts loading the cities of the new district.
func (c *Cascade) SetDistrict(ctx context.Context, id int64) <-chan error {
	id = normalize(id)

	c.mu.Lock()
	c.districtID = id
	c.cityID = 0
	c.cities = nil
	c.cityGen++
	c.citiesLoading = id != 0
	gen := c.cityGen
	c.mu.Unlock()

	if id == 0 {
		return settled()
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		cities, err := c.lookup.ListCities(ctx, id)

		c.mu.Lock()
		current := gen == c.cityGen && c.districtID == id
		if current {
			c.citiesLoading = false
			if err == nil {
				c.cities = cities
			}
		}
		c.mu.Unlock()

		if !current {
			c.log.Debug("Discarding stale city options", zap.Int64("district_id", id))
			done <- ErrStale
			return
		}
		if err != nil {
			c.log.Warn("Failed to load cities", zap.Int64("district_id", id), zap.Error(err))
		}
		done <- err
	}()
	return done
}

// SetCity selects the leaf level.
func (c *Cascade) SetCity(id int64) {
	c.mu.Lock()
	c.cityID = normalize(id)
	c.mu.Unlock()
}

// Reset clears every selection and option list below the regions and
// invalidates in-flight fetches.
func (c *Cascade) Reset() {
	c.mu.Lock()
	c.regionID = 0
	c.districtID = 0
	c.cityID = 0
	c.districts = nil
	c.cities = nil
	c.districtsLoading = false
	c.citiesLoading = false
	c.districtGen++
	c.cityGen++
	c.mu.Unlock()
}

// Restore selects the region, district and city a stored city id belongs to
// and loads the matching option lists.
func (c *Cascade) Restore(ctx context.Context, cityID int64) error {
	cityID = normalize(cityID)
	if cityID == 0 {
		c.Reset()
		return nil
	}
	loc, err := c.lookup.ResolveCity(ctx, cityID)
	if err != nil {
		return err
	}
	if err := Wait(ctx, c.SetRegion(ctx, loc.Region.ID)); err != nil {
		return err
	}
	if err := Wait(ctx, c.SetDistrict(ctx, loc.District.ID)); err != nil {
		return err
	}
	c.SetCity(loc.City.ID)
	return nil
}

// Selected returns the current selection; zero means empty.
func (c *Cascade) Selected() (regionID, districtID, cityID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regionID, c.districtID, c.cityID
}

// DistrictEnabled reports whether the district picker has something to offer.
func (c *Cascade) DistrictEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regionID != 0 && len(c.districts) > 0
}

// CityEnabled reports whether the city picker has something to offer.
func (c *Cascade) CityEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.districtID != 0 && len(c.cities) > 0
}

// Snapshot returns a copy of the current state.
func (c *Cascade) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		RegionID:         c.regionID,
		DistrictID:       c.districtID,
		CityID:           c.cityID,
		Regions:          append([]domain.Region(nil), c.regions...),
		Districts:        append([]domain.District(nil), c.districts...),
		Cities:           append([]domain.City(nil), c.cities...),
		DistrictsLoading: c.districtsLoading,
		CitiesLoading:    c.citiesLoading,
	}
}

// Wait blocks until a completion channel settles or ctx is done.
func Wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
