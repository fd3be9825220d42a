// Package aggregate computes cross-dataset statistics used to render a
// batch of model outputs consistently: a shared percentile-based color
// range with a colormap recommendation, and common spatial extents.
package aggregate

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cryoscan/cryoscan/pkg/grid"
	"github.com/cryoscan/cryoscan/pkg/logging"
)

// Default percentiles for the shared color range. Clipping the extreme
// tails keeps one outlier-heavy model from washing out every plot.
const (
	DefaultPercentileLow  = 5.0
	DefaultPercentileHigh = 95.0
)

// maxSamplePerDataset caps how many values one dataset contributes to
// the percentile estimate.
const maxSamplePerDataset = 1_000_000

// Colormap names, matplotlib vocabulary.
const (
	ColormapDiverging         = "RdBu_r"
	ColormapSequential        = "Blues"
	ColormapSequentialReverse = "Blues_r"
	ColormapDefault           = "viridis"
)

// ValueRange is a shared color scale for a batch of datasets.
type ValueRange struct {
	Min      float64
	Max      float64
	Colormap string
}

// Range is a closed interval on one spatial axis.
type Range struct {
	Min float64
	Max float64
}

// GlobalValueRange estimates a color range covering every dataset in
// the batch, from the given percentiles of the pooled finite values.
// Datasets larger than a million valid values contribute a uniform
// random subsample taken without replacement.
//
// The colormap follows the sign structure of the range: data crossing
// zero gets a diverging map with the range widened to be symmetric,
// data hugging zero from one side gets a sequential map clamped to
// zero, and everything else gets the default map.
//
// When no dataset holds a finite value the result is nil; callers
// should fall back to ColormapDefault.
func GlobalValueRange(datasets *grid.Datasets, pctLow, pctHigh float64) *ValueRange {
	if datasets == nil || datasets.Len() == 0 {
		return nil
	}

	log := logging.Default()
	var pooled []float64
	for _, key := range datasets.Keys() {
		arr, ok := datasets.Get(key)
		if !ok || arr == nil {
			log.Warn().Str("key", key).Msg("skipping dataset while sampling values")
			continue
		}
		valid := finiteValues(arr.Values)
		if len(valid) == 0 {
			continue
		}
		if len(valid) > maxSamplePerDataset {
			valid = subsample(valid, maxSamplePerDataset)
		}
		pooled = append(pooled, valid...)
	}
	if len(pooled) == 0 {
		return nil
	}

	sort.Float64s(pooled)
	vmin := stat.Quantile(pctLow/100, stat.LinInterp, pooled, nil)
	vmax := stat.Quantile(pctHigh/100, stat.LinInterp, pooled, nil)

	var cmap string
	switch {
	case vmin < 0 && vmax > 0:
		m := math.Max(math.Abs(vmin), math.Abs(vmax))
		vmin, vmax = -m, m
		cmap = ColormapDiverging
	case math.Abs(vmax) > math.Abs(vmin) && math.Abs(vmin) < 1:
		vmin = 0
		cmap = ColormapSequential
	case math.Abs(vmin) > math.Abs(vmax) && math.Abs(vmax) < 1:
		vmax = 0
		cmap = ColormapSequentialReverse
	default:
		cmap = ColormapDefault
	}
	return &ValueRange{Min: vmin, Max: vmax, Colormap: cmap}
}

// CoordinateRanges returns the x and y extents shared by the batch. The
// first dataset's coordinate vectors are the reference; later datasets
// are assumed to live on the same standard grid. A dataset without
// coordinate vectors falls back to index extents from its spatial
// shape, and an empty batch yields unit ranges.
func CoordinateRanges(datasets *grid.Datasets) (x, y Range) {
	unit := Range{Min: 0, Max: 1}
	if datasets == nil || datasets.Len() == 0 {
		return unit, unit
	}
	first := datasets.First()
	if first == nil {
		return unit, unit
	}
	if len(first.X) > 0 && len(first.Y) > 0 {
		x = Range{Min: floats.Min(first.X), Max: floats.Max(first.X)}
		y = Range{Min: floats.Min(first.Y), Max: floats.Max(first.Y)}
		return x, y
	}
	ny, nx := first.SpatialShape()
	return Range{Min: 0, Max: float64(nx)}, Range{Min: 0, Max: float64(ny)}
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// subsample picks n values uniformly without replacement via a partial
// Fisher-Yates shuffle. The input is its own scratch space.
func subsample(values []float64, n int) []float64 {
	for i := 0; i < n; i++ {
		j := i + rand.Intn(len(values)-i)
		values[i], values[j] = values[j], values[i]
	}
	return values[:n]
}
