// Package config binds the viper configuration keys to typed settings.
// Precedence is flags, then environment, then the config file, then the
// defaults registered here.
package config

import (
	"github.com/spf13/viper"
)

// Settings is the resolved configuration of one CLI invocation.
type Settings struct {
	Store struct {
		Bucket   string
		Scheme   string
		Endpoint string
	}
	Cache struct {
		CatalogFile string
		Datasets    struct {
			Enabled  bool
			MaxItems int
		}
	}
	Load struct {
		Sentinels []float64
	}
	Aggregate struct {
		PercentileLow  float64
		PercentileHigh float64
	}
}

// Default values mirroring the public ISMIP6 archive.
const (
	DefaultBucket      = "ismip6"
	DefaultScheme      = "gs"
	DefaultCatalogFile = ".cache/catalog.parquet"
	DefaultCacheItems  = 10
)

// SetDefaults registers every configuration key with its default.
func SetDefaults() {
	viper.SetDefault("store.bucket", DefaultBucket)
	viper.SetDefault("store.scheme", DefaultScheme)
	viper.SetDefault("store.endpoint", "")
	viper.SetDefault("cache.catalog_file", DefaultCatalogFile)
	viper.SetDefault("cache.datasets.enabled", true)
	viper.SetDefault("cache.datasets.max_items", DefaultCacheItems)
	viper.SetDefault("load.sentinels", []float64{0})
	viper.SetDefault("aggregate.percentile_low", 5.0)
	viper.SetDefault("aggregate.percentile_high", 95.0)
}

// Load resolves the settings from viper's current state.
func Load() *Settings {
	s := &Settings{}
	s.Store.Bucket = viper.GetString("store.bucket")
	s.Store.Scheme = viper.GetString("store.scheme")
	s.Store.Endpoint = viper.GetString("store.endpoint")
	s.Cache.CatalogFile = viper.GetString("cache.catalog_file")
	s.Cache.Datasets.Enabled = viper.GetBool("cache.datasets.enabled")
	s.Cache.Datasets.MaxItems = viper.GetInt("cache.datasets.max_items")
	s.Load.Sentinels = floatSlice(viper.Get("load.sentinels"))
	s.Aggregate.PercentileLow = viper.GetFloat64("aggregate.percentile_low")
	s.Aggregate.PercentileHigh = viper.GetFloat64("aggregate.percentile_high")
	return s
}

// floatSlice coerces a config value into floats, since YAML, flags, and
// env vars each hand viper a different concrete type.
func floatSlice(v any) []float64 {
	switch vals := v.(type) {
	case []float64:
		return vals
	case []any:
		out := make([]float64, 0, len(vals))
		for _, item := range vals {
			switch n := item.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			case int64:
				out = append(out, float64(n))
			}
		}
		return out
	default:
		return nil
	}
}
