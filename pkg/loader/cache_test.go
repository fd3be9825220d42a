package loader

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryoscan/cryoscan/pkg/grid"
)

func cacheArray(v float64) *grid.DataArray {
	return &grid.DataArray{
		Name:   "lithk",
		Dims:   []string{grid.DimY, grid.DimX},
		Shape:  []int{1, 1},
		Values: []float64{v},
	}
}

func TestNewCacheRejectsNonPositive(t *testing.T) {
	_, err := NewCache(0)
	assert.Error(t, err)
	_, err = NewCache(-3)
	assert.Error(t, err)
}

func TestCacheEvictsLeastRecent(t *testing.T) {
	c, err := NewCache(3)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("gs://b/f%d.nc", i), "lithk", cacheArray(float64(i)))
	}

	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Contains("gs://b/f0.nc", "lithk"))
	assert.False(t, c.Contains("gs://b/f1.nc", "lithk"))
	for i := 2; i < 5; i++ {
		assert.True(t, c.Contains(fmt.Sprintf("gs://b/f%d.nc", i), "lithk"))
	}
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	c.Put("gs://b/a.nc", "lithk", cacheArray(1))
	c.Put("gs://b/c.nc", "lithk", cacheArray(2))
	_, ok := c.Get("gs://b/a.nc", "lithk")
	require.True(t, ok)
	c.Put("gs://b/e.nc", "lithk", cacheArray(3))

	assert.True(t, c.Contains("gs://b/a.nc", "lithk"))
	assert.False(t, c.Contains("gs://b/c.nc", "lithk"))
}

func TestCacheKeyIncludesVariable(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	c.Put("gs://b/a.nc", "lithk", cacheArray(1))

	_, ok := c.Get("gs://b/a.nc", "orog")
	assert.False(t, ok)
	_, ok = c.Get("gs://b/a.nc", "lithk")
	assert.True(t, ok)
}

func TestCachePutKeepsResidentEntry(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	c.Put("gs://b/a.nc", "lithk", cacheArray(1))
	c.Put("gs://b/a.nc", "lithk", cacheArray(99))

	got, ok := c.Get("gs://b/a.nc", "lithk")
	require.True(t, ok)
	assert.Equal(t, 1.0, got.Values[0])
	assert.Equal(t, 1, c.Len())
}

func TestCacheHandsOutCopies(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	orig := cacheArray(1)
	c.Put("gs://b/a.nc", "lithk", orig)
	orig.Values[0] = -1 // caller keeps ownership of what it put in

	first, ok := c.Get("gs://b/a.nc", "lithk")
	require.True(t, ok)
	assert.Equal(t, 1.0, first.Values[0])

	first.Values[0] = 42
	second, ok := c.Get("gs://b/a.nc", "lithk")
	require.True(t, ok)
	assert.Equal(t, 1.0, second.Values[0])
}

func TestCachePurge(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	c.Put("gs://b/a.nc", "lithk", cacheArray(1))
	c.Purge()

	assert.Equal(t, 0, c.Len())
}
