package cryoscan

import (
	"fmt"

	"github.com/cryoscan/cryoscan/pkg/aggregate"
	"github.com/cryoscan/cryoscan/pkg/catalog"
	"github.com/cryoscan/cryoscan/pkg/grid"
	"github.com/cryoscan/cryoscan/pkg/loader"
	"github.com/cryoscan/cryoscan/pkg/store"
)

// Defaults for the public ISMIP6 archive.
const (
	DefaultBucket = "ismip6"
	DefaultScheme = "gs"
)

// DefaultSentinels are the raw values rewritten to NaN at load time.
// Zero marks open ocean in most ISMIP6 thickness and velocity fields.
var DefaultSentinels = []float64{0}

// config holds the assembled settings for a Cryoscan instance.
type config struct {
	store     store.Store
	root      string
	scheme    string
	cachePath string

	cacheEnabled bool
	cacheItems   int

	normalizer grid.Normalizer
	decoder    loader.Decoder
	sentinels  []float64

	pctLow  float64
	pctHigh float64
}

func newConfig() *config {
	return &config{
		store:        store.NewGCS(DefaultBucket),
		root:         DefaultBucket,
		scheme:       DefaultScheme,
		cachePath:    catalog.DefaultCachePath,
		cacheEnabled: true,
		cacheItems:   loader.DefaultCacheItems,
		normalizer:   &grid.Standard{},
		sentinels:    DefaultSentinels,
		pctLow:       aggregate.DefaultPercentileLow,
		pctHigh:      aggregate.DefaultPercentileHigh,
	}
}

// Option is a function that configures a Cryoscan instance.
type Option func(*config) error

// WithStore configures the object store to index and read. root is the
// listing prefix the catalog crawl starts from and scheme is the URL
// scheme recorded in catalog entries.
func WithStore(s store.Store, root, scheme string) Option {
	return func(c *config) error {
		if s == nil {
			return fmt.Errorf("store must not be nil")
		}
		c.store = s
		c.root = root
		c.scheme = scheme
		return nil
	}
}

// WithBucket points the default GCS store at a different bucket.
func WithBucket(bucket string) Option {
	return func(c *config) error {
		if bucket == "" {
			return fmt.Errorf("bucket must not be empty")
		}
		c.store = store.NewGCS(bucket)
		c.root = bucket
		return nil
	}
}

// WithCatalogCache sets where the built catalog is persisted.
func WithCatalogCache(path string) Option {
	return func(c *config) error {
		c.cachePath = path
		return nil
	}
}

// WithDecodeCache bounds the decode cache to maxItems entries.
func WithDecodeCache(maxItems int) Option {
	return func(c *config) error {
		if maxItems <= 0 {
			return fmt.Errorf("decode cache size must be positive, got %d", maxItems)
		}
		c.cacheEnabled = true
		c.cacheItems = maxItems
		return nil
	}
}

// WithoutDecodeCache disables decode caching entirely; every load
// fetches from the store.
func WithoutDecodeCache() Option {
	return func(c *config) error {
		c.cacheEnabled = false
		return nil
	}
}

// WithNormalizer overrides the grid coordinate normalizer.
func WithNormalizer(n grid.Normalizer) Option {
	return func(c *config) error {
		c.normalizer = n
		return nil
	}
}

// WithDecoder overrides the file decoder. Useful for formats beyond
// NetCDF and for tests.
func WithDecoder(d loader.Decoder) Option {
	return func(c *config) error {
		c.decoder = d
		return nil
	}
}

// WithSentinels sets the raw values rewritten to NaN at load time.
// Pass an empty slice to keep every value.
func WithSentinels(values ...float64) Option {
	return func(c *config) error {
		c.sentinels = values
		return nil
	}
}

// WithPercentiles sets the percentiles bounding the shared color range.
func WithPercentiles(low, high float64) Option {
	return func(c *config) error {
		if low < 0 || high > 100 || low >= high {
			return fmt.Errorf("percentiles must satisfy 0 <= low < high <= 100, got %g and %g", low, high)
		}
		c.pctLow = low
		c.pctHigh = high
		return nil
	}
}
