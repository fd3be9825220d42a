// Package cryoscan indexes and loads ice sheet model output published
// as NetCDF files in a remote object store. It builds a queryable
// catalog from the store's directory layout, loads batches of files
// with progress reporting and partial-failure tolerance, and computes
// the cross-dataset ranges needed to compare model outputs on a common
// scale.
package cryoscan

import (
	"context"
	"fmt"
	"sync"

	"github.com/cryoscan/cryoscan/pkg/aggregate"
	"github.com/cryoscan/cryoscan/pkg/catalog"
	"github.com/cryoscan/cryoscan/pkg/grid"
	"github.com/cryoscan/cryoscan/pkg/loader"
)

// Cryoscan is the top-level handle on an indexed object store.
type Cryoscan interface {
	// Catalog returns the file catalog, building it on first use. The
	// build crawls the store unless a cached catalog file exists.
	Catalog(ctx context.Context) (*catalog.Catalog, error)

	// RebuildCatalog crawls the store again, ignoring any cached
	// catalog file, and replaces the in-memory catalog.
	RebuildCatalog(ctx context.Context) (*catalog.Catalog, error)

	// Load fetches and decodes one variable from each file, in order,
	// reporting progress as it goes. Files that fail are skipped.
	Load(ctx context.Context, files []loader.File, variable string, sel loader.TimeSelection, progress loader.ProgressFunc) (*grid.Datasets, *loader.YearRange)

	// ValueRange computes a shared color range for the batch, nil when
	// the batch holds no finite values.
	ValueRange(datasets *grid.Datasets) *aggregate.ValueRange

	// CoordinateRanges returns the x and y extents of the batch.
	CoordinateRanges(datasets *grid.Datasets) (x, y aggregate.Range)
}

// cryoscan is the internal implementation of the Cryoscan interface.
type cryoscan struct {
	mu      sync.Mutex
	config  *config
	catalog *catalog.Catalog
	loader  *loader.Loader
}

// New creates a Cryoscan instance with the given options. Without
// options it reads the public ISMIP6 bucket, caches the catalog under
// .cache, and keeps a ten entry decode cache.
func New(opts ...Option) (Cryoscan, error) {
	c := &cryoscan{
		config: newConfig(),
	}

	if err := c.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	loaderOpts := []loader.Option{
		loader.WithNormalizer(c.config.normalizer),
	}
	if c.config.cacheEnabled {
		cache, err := loader.NewCache(c.config.cacheItems)
		if err != nil {
			return nil, fmt.Errorf("creating decode cache: %w", err)
		}
		loaderOpts = append(loaderOpts, loader.WithCache(cache))
	}
	if c.config.decoder != nil {
		loaderOpts = append(loaderOpts, loader.WithDecoder(c.config.decoder))
	}
	c.loader = loader.New(c.config.store, loaderOpts...)

	return c, nil
}

// options applies each option to the config.
func (c *cryoscan) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c.config); err != nil {
			return err
		}
	}
	if c.config.store == nil {
		return fmt.Errorf("no object store configured")
	}
	return nil
}

// Catalog returns the file catalog, building it once per instance.
func (c *cryoscan) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog != nil {
		return c.catalog, nil
	}
	return c.buildCatalog(ctx, false)
}

// RebuildCatalog crawls the store unconditionally.
func (c *cryoscan) RebuildCatalog(ctx context.Context) (*catalog.Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buildCatalog(ctx, true)
}

// buildCatalog must be called with the mutex held.
func (c *cryoscan) buildCatalog(ctx context.Context, force bool) (*catalog.Catalog, error) {
	cat, err := catalog.Get(ctx, c.config.store, c.config.root, c.config.scheme, c.config.cachePath, force)
	if err != nil {
		return nil, err
	}
	c.catalog = cat
	return cat, nil
}

// Load fetches and decodes one variable from each file.
func (c *cryoscan) Load(ctx context.Context, files []loader.File, variable string, sel loader.TimeSelection, progress loader.ProgressFunc) (*grid.Datasets, *loader.YearRange) {
	return c.loader.LoadMany(ctx, files, variable, c.config.sentinels, sel, progress)
}

// ValueRange computes the shared color range for the batch.
func (c *cryoscan) ValueRange(datasets *grid.Datasets) *aggregate.ValueRange {
	return aggregate.GlobalValueRange(datasets, c.config.pctLow, c.config.pctHigh)
}

// CoordinateRanges returns the x and y extents of the batch.
func (c *cryoscan) CoordinateRanges(datasets *grid.Datasets) (x, y aggregate.Range) {
	return aggregate.CoordinateRanges(datasets)
}
