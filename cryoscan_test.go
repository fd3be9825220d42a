package cryoscan

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryoscan/cryoscan/pkg/grid"
	"github.com/cryoscan/cryoscan/pkg/loader"
	"github.com/cryoscan/cryoscan/pkg/store"
	"github.com/cryoscan/cryoscan/pkg/timefix"
)

// fakeStore serves a canned hierarchy and file contents.
type fakeStore struct {
	tree      map[string][]store.Entry
	listCalls int
	openCalls int
}

func (f *fakeStore) List(_ context.Context, prefix string) ([]store.Entry, error) {
	f.listCalls++
	return f.tree[prefix], nil
}

func (f *fakeStore) Open(_ context.Context, url string) (io.ReadSeekCloser, error) {
	f.openCalls++
	return nopRSC{strings.NewReader(url)}, nil
}

type nopRSC struct {
	io.ReadSeeker
}

func (nopRSC) Close() error { return nil }

func testStore() *fakeStore {
	dir := func(name string) store.Entry { return store.Entry{Name: name, IsDir: true} }
	file := func(name string, size int64) store.Entry { return store.Entry{Name: name, Size: size} }
	return &fakeStore{tree: map[string][]store.Entry{
		"ismip6":                    {dir("ismip6/Projection-AIS")},
		"ismip6/Projection-AIS":     {dir("ismip6/Projection-AIS/AWI")},
		"ismip6/Projection-AIS/AWI": {dir("ismip6/Projection-AIS/AWI/PISM1")},
		"ismip6/Projection-AIS/AWI/PISM1": {
			dir("ismip6/Projection-AIS/AWI/PISM1/exp05"),
		},
		"ismip6/Projection-AIS/AWI/PISM1/exp05": {
			file("ismip6/Projection-AIS/AWI/PISM1/exp05/lithk_AIS_AWI_PISM1_exp05.nc", 2048),
		},
	}}
}

func fakeDecode(rsc io.ReadSeekCloser) (*grid.Dataset, error) {
	return &grid.Dataset{
		Vars: map[string]*grid.DataArray{
			"lithk": {
				Name:   "lithk",
				Dims:   []string{grid.DimTime, grid.DimY, grid.DimX},
				Shape:  []int{1, 2, 2},
				Values: []float64{0, 100, 200, 300},
			},
		},
		X:    []float64{0, 32000},
		Y:    []float64{0, 32000},
		Time: []timefix.Date{{Year: 2015, Month: 7, Day: 1}},
	}, nil
}

func newTestInstance(t *testing.T, fs *fakeStore, opts ...Option) Cryoscan {
	t.Helper()
	base := []Option{
		WithStore(fs, "ismip6", "gs"),
		WithCatalogCache(filepath.Join(t.TempDir(), "catalog.parquet")),
		WithDecoder(fakeDecode),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestCatalogBuiltOncePerInstance(t *testing.T) {
	fs := testStore()
	c := newTestInstance(t, fs)

	cat, err := c.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	listed := fs.listCalls
	cat2, err := c.Catalog(context.Background())
	require.NoError(t, err)
	assert.Same(t, cat, cat2)
	assert.Equal(t, listed, fs.listCalls)
}

func TestRebuildCatalogCrawlsAgain(t *testing.T) {
	fs := testStore()
	c := newTestInstance(t, fs)

	_, err := c.Catalog(context.Background())
	require.NoError(t, err)

	listed := fs.listCalls
	_, err = c.RebuildCatalog(context.Background())
	require.NoError(t, err)
	assert.Greater(t, fs.listCalls, listed)
}

func TestLoadRewritesDefaultSentinels(t *testing.T) {
	fs := testStore()
	c := newTestInstance(t, fs)

	files := []loader.File{{Key: "AWI/PISM1-exp05", URL: "gs://ismip6/a.nc"}}
	out, yr := c.Load(context.Background(), files, "lithk", loader.AllSteps, nil)

	require.Equal(t, 1, out.Len())
	arr, _ := out.Get("AWI/PISM1-exp05")
	assert.True(t, math.IsNaN(arr.Values[0]))
	assert.Equal(t, 100.0, arr.Values[1])
	require.NotNil(t, yr)
	assert.Equal(t, 2015, yr.Min)
}

func TestValueAndCoordinateRanges(t *testing.T) {
	fs := testStore()
	c := newTestInstance(t, fs, WithSentinels())

	files := []loader.File{{Key: "a", URL: "gs://ismip6/a.nc"}}
	out, _ := c.Load(context.Background(), files, "lithk", loader.AllSteps, nil)

	vr := c.ValueRange(out)
	require.NotNil(t, vr)
	assert.GreaterOrEqual(t, vr.Min, 0.0)
	assert.LessOrEqual(t, vr.Max, 300.0)

	x, y := c.CoordinateRanges(out)
	assert.Equal(t, 0.0, x.Min)
	assert.Equal(t, 32000.0, x.Max)
	assert.Equal(t, 32000.0, y.Max)
}

func TestOptionValidation(t *testing.T) {
	_, err := New(WithStore(nil, "ismip6", "gs"))
	assert.Error(t, err)

	_, err = New(WithDecodeCache(0))
	assert.Error(t, err)

	_, err = New(WithPercentiles(95, 5))
	assert.Error(t, err)

	_, err = New(WithBucket(""))
	assert.Error(t, err)
}
