package schedule

import (
	"github.com/bluele/gcache"
)

// CycleCache is a year-keyed cache of CycleMaps. Entries are never
// invalidated since a year's map is immutable; the cache is sized to hold
// every supported year.
type CycleCache struct {
	cache gcache.Cache
}

// NewCycleCache creates an empty CycleCache
func NewCycleCache() *CycleCache {
	return &CycleCache{
		cache: gcache.New(MaxYear - MinYear + 1).
			Simple().
			LoaderFunc(func(key interface{}) (interface{}, error) {
				return BuildCycleMap(key.(int))
			}).
			Build(),
	}
}

// Get returns the CycleMap for year, building it on first use
func (c *CycleCache) Get(year int) (*CycleMap, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	v, err := c.cache.Get(year)
	if err != nil {
		return nil, err
	}
	return v.(*CycleMap), nil
}

// Len returns the number of cached years
func (c *CycleCache) Len() int {
	return c.cache.Len(false)
}
