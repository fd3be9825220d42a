package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryoscan/cryoscan/pkg/grid"
)

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func batch(arrays map[string][]float64, order ...string) *grid.Datasets {
	ds := grid.NewDatasets()
	for _, key := range order {
		values := arrays[key]
		ds.Add(key, &grid.DataArray{
			Name:   "lithk",
			Dims:   []string{grid.DimY, grid.DimX},
			Shape:  []int{1, len(values)},
			Values: values,
		})
	}
	return ds
}

func TestGlobalValueRangeDiverging(t *testing.T) {
	ds := batch(map[string][]float64{"a": linspace(-10, 10, 101)}, "a")

	vr := GlobalValueRange(ds, DefaultPercentileLow, DefaultPercentileHigh)

	require.NotNil(t, vr)
	assert.Equal(t, ColormapDiverging, vr.Colormap)
	assert.Equal(t, vr.Max, -vr.Min)
	assert.Greater(t, vr.Max, 8.0)
	assert.LessOrEqual(t, vr.Max, 10.0)
}

func TestGlobalValueRangePositiveNearZero(t *testing.T) {
	ds := batch(map[string][]float64{"a": linspace(0, 10, 101)}, "a")

	vr := GlobalValueRange(ds, DefaultPercentileLow, DefaultPercentileHigh)

	require.NotNil(t, vr)
	assert.Equal(t, ColormapSequential, vr.Colormap)
	assert.Equal(t, 0.0, vr.Min)
	assert.Greater(t, vr.Max, 9.0)
}

func TestGlobalValueRangeNegativeNearZero(t *testing.T) {
	ds := batch(map[string][]float64{"a": linspace(-10, 0, 101)}, "a")

	vr := GlobalValueRange(ds, DefaultPercentileLow, DefaultPercentileHigh)

	require.NotNil(t, vr)
	assert.Equal(t, ColormapSequentialReverse, vr.Colormap)
	assert.Equal(t, 0.0, vr.Max)
	assert.Less(t, vr.Min, -9.0)
}

func TestGlobalValueRangeSequentialFarFromZero(t *testing.T) {
	ds := batch(map[string][]float64{"a": linspace(100, 200, 101)}, "a")

	vr := GlobalValueRange(ds, DefaultPercentileLow, DefaultPercentileHigh)

	require.NotNil(t, vr)
	assert.Equal(t, ColormapDefault, vr.Colormap)
	assert.Greater(t, vr.Min, 100.0)
	assert.Less(t, vr.Max, 200.0)
}

func TestGlobalValueRangePoolsAcrossDatasets(t *testing.T) {
	ds := batch(map[string][]float64{
		"neg": linspace(-10, -2, 50),
		"pos": linspace(2, 10, 50),
	}, "neg", "pos")

	vr := GlobalValueRange(ds, DefaultPercentileLow, DefaultPercentileHigh)

	require.NotNil(t, vr)
	assert.Equal(t, ColormapDiverging, vr.Colormap)
	assert.Equal(t, vr.Max, -vr.Min)
}

func TestGlobalValueRangeIgnoresNonFinite(t *testing.T) {
	values := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 5, 5, 5, 5}
	ds := batch(map[string][]float64{"a": values}, "a")

	vr := GlobalValueRange(ds, DefaultPercentileLow, DefaultPercentileHigh)

	require.NotNil(t, vr)
	assert.Equal(t, 5.0, vr.Min)
	assert.Equal(t, 5.0, vr.Max)
}

func TestGlobalValueRangeNoFiniteValues(t *testing.T) {
	ds := batch(map[string][]float64{"a": {math.NaN(), math.NaN()}}, "a")

	assert.Nil(t, GlobalValueRange(ds, DefaultPercentileLow, DefaultPercentileHigh))
	assert.Nil(t, GlobalValueRange(grid.NewDatasets(), DefaultPercentileLow, DefaultPercentileHigh))
	assert.Nil(t, GlobalValueRange(nil, DefaultPercentileLow, DefaultPercentileHigh))
}

func TestGlobalValueRangeSubsamplesLargeDataset(t *testing.T) {
	values := make([]float64, maxSamplePerDataset+500)
	for i := range values {
		values[i] = float64(i % 100)
	}
	ds := batch(map[string][]float64{"a": values}, "a")

	vr := GlobalValueRange(ds, DefaultPercentileLow, DefaultPercentileHigh)

	require.NotNil(t, vr)
	assert.GreaterOrEqual(t, vr.Min, 0.0)
	assert.LessOrEqual(t, vr.Max, 99.0)
}

func TestCoordinateRangesFirstDatasetWins(t *testing.T) {
	ds := grid.NewDatasets()
	ds.Add("first", &grid.DataArray{
		Shape:  []int{2, 2},
		Values: []float64{1, 2, 3, 4},
		X:      []float64{-3040000, 0, 3040000},
		Y:      []float64{-3040000, 3040000},
	})
	ds.Add("second", &grid.DataArray{
		Shape:  []int{2, 2},
		Values: []float64{1, 2, 3, 4},
		X:      []float64{-720000, 960000},
		Y:      []float64{-3450000, -570000},
	})

	x, y := CoordinateRanges(ds)

	assert.Equal(t, Range{Min: -3040000, Max: 3040000}, x)
	assert.Equal(t, Range{Min: -3040000, Max: 3040000}, y)
}

func TestCoordinateRangesShapeFallback(t *testing.T) {
	ds := grid.NewDatasets()
	ds.Add("a", &grid.DataArray{
		Shape:  []int{3, 761, 761},
		Values: nil,
	})

	x, y := CoordinateRanges(ds)

	assert.Equal(t, Range{Min: 0, Max: 761}, x)
	assert.Equal(t, Range{Min: 0, Max: 761}, y)
}

func TestCoordinateRangesEmpty(t *testing.T) {
	x, y := CoordinateRanges(grid.NewDatasets())
	assert.Equal(t, Range{Min: 0, Max: 1}, x)
	assert.Equal(t, Range{Min: 0, Max: 1}, y)

	x, y = CoordinateRanges(nil)
	assert.Equal(t, Range{Min: 0, Max: 1}, x)
	assert.Equal(t, Range{Min: 0, Max: 1}, y)
}
