package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryoscan/cryoscan/pkg/store"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "catalog.parquet")

	orig := New([]Record{
		{Variable: "lithk", IceSheet: "AIS", Institution: "AWI", ModelName: "PISM1",
			Experiment: "exp05", URL: "gs://ismip6/Projection-AIS/AWI/PISM1/exp05/lithk.nc", SizeBytes: 2048},
		{Variable: "orog", IceSheet: "GIS", Institution: "JPL", ModelName: "ISSM",
			Experiment: "ctrl", URL: "gs://ismip6/Projection-GIS/JPL/ISSM/ctrl/orog.nc", SizeBytes: 512},
	})

	require.NoError(t, orig.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig.Records(), loaded.Records())
}

func TestLoadIdempotent(t *testing.T) {
	// Loading the persisted catalog twice without forcing a rebuild
	// yields identical content and leaves the file bytes untouched.
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	cat := New([]Record{
		{Variable: "acabf", IceSheet: "AIS", Institution: "NCAR", ModelName: "CISM",
			Experiment: "expA7", URL: "gs://ismip6/x.nc", SizeBytes: 7},
	})
	require.NoError(t, cat.Save(path))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, first.Records(), second.Records())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.parquet"))
	require.Error(t, err)
}

// failLister fails every call; used to prove the cache fast path never
// touches the network.
type failLister struct{}

func (failLister) List(context.Context, string) ([]store.Entry, error) {
	return nil, errors.New("lister should not be called")
}

func TestGetUsesCacheFastPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	cat := New([]Record{
		{Variable: "lithk", IceSheet: "AIS", Institution: "AWI", ModelName: "PISM1",
			Experiment: "exp05", URL: "gs://ismip6/y.nc", SizeBytes: 1},
	})
	require.NoError(t, cat.Save(path))

	got, err := Get(context.Background(), failLister{}, "ismip6", "gs", path, false)
	require.NoError(t, err)
	assert.Equal(t, cat.Records(), got.Records())
}

func TestGetRebuildsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	lister := &fakeLister{tree: testTree()}

	got, err := Get(context.Background(), lister, "ismip6", "gs", path, false)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())

	// The build persisted its result for the next call.
	_, err = os.Stat(path)
	require.NoError(t, err)

	// Second call takes the fast path: no listing calls.
	calls := lister.calls
	again, err := Get(context.Background(), lister, "ismip6", "gs", path, false)
	require.NoError(t, err)
	assert.Equal(t, got.Records(), again.Records())
	assert.Equal(t, calls, lister.calls)
}

func TestGetForceRebuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	lister := &fakeLister{tree: testTree()}

	_, err := Get(context.Background(), lister, "ismip6", "gs", path, false)
	require.NoError(t, err)

	calls := lister.calls
	_, err = Get(context.Background(), lister, "ismip6", "gs", path, true)
	require.NoError(t, err)
	assert.Greater(t, lister.calls, calls)
}
