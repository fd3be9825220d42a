// Package loader fetches and decodes batches of remote model output
// files, reporting progress as it goes and tolerating per-file
// failures. A bounded, least-recently-used decode cache keyed by
// (url, variable) avoids re-fetching files the user flips between.
package loader

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cryoscan/cryoscan/pkg/errors"
	"github.com/cryoscan/cryoscan/pkg/grid"
)

// DefaultCacheItems is the decode cache capacity when the caller does
// not choose one. Entries are whole files with every time step, so the
// bound is deliberately small.
const DefaultCacheItems = 10

// cacheKey identifies one decoded file/variable pair.
type cacheKey struct {
	URL      string
	Variable string
}

// Cache is a bounded decode cache with least-recently-used eviction.
// Entries are fully materialized arrays, decoupled from any network
// connection. The cache owns its entries: lookups and inserts deep-copy,
// so callers can mutate what they get back without corrupting the cache.
//
// Construct one per process and hand it to the loader; there is no
// process-wide implicit cache.
type Cache struct {
	lru *lru.Cache[cacheKey, *grid.DataArray]
}

// NewCache creates a cache bounded to maxItems entries.
func NewCache(maxItems int) (*Cache, error) {
	if maxItems <= 0 {
		return nil, &errors.ConfigError{
			Component: "decode cache",
			Message:   "max items must be positive",
		}
	}
	l, err := lru.New[cacheKey, *grid.DataArray](maxItems)
	if err != nil {
		return nil, &errors.ConfigError{Component: "decode cache", Message: err.Error(), Err: err}
	}
	return &Cache{lru: l}, nil
}

// Get returns an independently owned copy of the cached entry, updating
// its recency.
func (c *Cache) Get(url, variable string) (*grid.DataArray, bool) {
	arr, ok := c.lru.Get(cacheKey{URL: url, Variable: variable})
	if !ok {
		return nil, false
	}
	return arr.Clone(), true
}

// Put stores a copy of arr. Re-inserting an existing key only updates
// its recency; the resident entry is kept.
func (c *Cache) Put(url, variable string, arr *grid.DataArray) {
	key := cacheKey{URL: url, Variable: variable}
	if _, ok := c.lru.Get(key); ok {
		return
	}
	c.lru.Add(key, arr.Clone())
}

// Contains reports whether the key is resident without updating recency.
func (c *Cache) Contains(url, variable string) bool {
	return c.lru.Contains(cacheKey{URL: url, Variable: variable})
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}
