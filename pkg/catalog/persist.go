package catalog

import (
	"context"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/cryoscan/cryoscan/pkg/errors"
	"github.com/cryoscan/cryoscan/pkg/logging"
	"github.com/cryoscan/cryoscan/pkg/store"
)

// DefaultCachePath is where the catalog is persisted when the caller
// does not choose a path.
const DefaultCachePath = ".cache/catalog.parquet"

// Save writes the catalog to a columnar parquet file at path, creating
// parent directories as needed. The file holds exactly the columns
// variable, ice_sheet, institution, model_name, experiment, url,
// size_bytes in canonical record order and round-trips losslessly.
func (c *Catalog) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &errors.ConfigError{
				Component: "catalog",
				Message:   "cannot create cache directory " + dir,
				Err:       err,
			}
		}
	}
	if err := parquet.WriteFile(path, c.records); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads a previously saved catalog from path.
func Load(path string) (*Catalog, error) {
	rows, err := parquet.ReadFile[Record](path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapIO("read", path, errors.ErrNotFound)
		}
		return nil, errors.WrapParse("parquet", path, err)
	}
	// Saved catalogs are already in canonical order; New re-sorts so a
	// hand-edited file cannot break the ordering invariant.
	return New(rows), nil
}

// Get returns the catalog, loading the persisted cache file when it
// exists and a rebuild is not forced. Otherwise the store is crawled and
// the result persisted. Persistence is best-effort: a failed save is
// logged and the freshly built catalog returned anyway.
func Get(ctx context.Context, lister store.Lister, root, scheme, cachePath string, forceRebuild bool) (*Catalog, error) {
	log := logging.FromContext(ctx)
	if cachePath == "" {
		cachePath = DefaultCachePath
	}

	if !forceRebuild {
		if _, err := os.Stat(cachePath); err == nil {
			log.Info().Str("cache", cachePath).Msg("Loading catalog from cache")
			return Load(cachePath)
		}
	}

	cat, err := NewBuilder(lister, root, scheme).Build(ctx)
	if err != nil {
		return nil, err
	}

	if err := cat.Save(cachePath); err != nil {
		log.Warn().Err(err).Str("cache", cachePath).Msg("Could not persist catalog")
	} else {
		log.Info().Str("cache", cachePath).Msg("Saved catalog to cache")
	}
	return cat, nil
}
