package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryoscan/cryoscan/pkg/errors"
)

func newListServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/storage/v1/b/ismip6/o", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		var resp listResponse
		switch prefix {
		case "":
			resp.Prefixes = []string{"Projection-AIS/", "Projection-GIS/"}
		case "Projection-AIS/":
			resp.Prefixes = []string{"Projection-AIS/AWI/"}
		case "Projection-AIS/AWI/PISM1/exp05/":
			resp.Items = []struct {
				Name string `json:"name"`
				Size string `json:"size"`
			}{
				{Name: "Projection-AIS/AWI/PISM1/exp05/lithk_AIS_AWI_PISM1_exp05.nc", Size: "1048576"},
				{Name: "Projection-AIS/AWI/PISM1/exp05/readme.txt", Size: "oops"},
			}
		default:
			resp = listResponse{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/storage/v1/b/ismip6/o/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "media" {
			http.Error(w, "expected media download", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("netcdf-bytes"))
	})
	return httptest.NewServer(mux)
}

func TestGCSListPrefixes(t *testing.T) {
	srv := newListServer(t)
	defer srv.Close()

	g := NewGCS("ismip6", WithEndpoint(srv.URL))
	entries, err := g.List(context.Background(), "ismip6")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ismip6/Projection-AIS", entries[0].Name)
	assert.True(t, entries[0].IsDir)
}

func TestGCSListFiles(t *testing.T) {
	srv := newListServer(t)
	defer srv.Close()

	g := NewGCS("ismip6", WithEndpoint(srv.URL))
	entries, err := g.List(context.Background(), "ismip6/Projection-AIS/AWI/PISM1/exp05")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "ismip6/Projection-AIS/AWI/PISM1/exp05/lithk_AIS_AWI_PISM1_exp05.nc", entries[0].Name)
	assert.Equal(t, int64(1048576), entries[0].Size)

	// A malformed size defaults to zero rather than failing the listing.
	assert.Equal(t, int64(0), entries[1].Size)
}

func TestGCSListError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	g := NewGCS("ismip6", WithEndpoint(srv.URL))
	_, err := g.List(context.Background(), "ismip6/Projection-AIS")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrList)
}

func TestGCSOpenMaterializes(t *testing.T) {
	srv := newListServer(t)
	defer srv.Close()

	g := NewGCS("ismip6", WithEndpoint(srv.URL))
	rc, err := g.Open(context.Background(), "gs://ismip6/Projection-AIS/AWI/PISM1/exp05/lithk_AIS_AWI_PISM1_exp05.nc")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "netcdf-bytes", string(data))

	// Seekable after the connection has been released.
	_, err = rc.Seek(0, io.SeekStart)
	require.NoError(t, err)
	again, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestGCSOpenWrongBucket(t *testing.T) {
	g := NewGCS("ismip6")
	_, err := g.Open(context.Background(), "gs://elsewhere/file.nc")
	require.Error(t, err)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	leaf := filepath.Join(dir, "Projection-GIS", "JPL", "ISSM", "exp05")
	require.NoError(t, os.MkdirAll(leaf, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(leaf, "orog_GIS_JPL_ISSM_exp05.nc"), []byte("abc"), 0o644))

	l := NewLocal(dir)
	root := filepath.Base(dir)

	entries, err := l.List(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir)

	files, err := l.List(context.Background(), root+"/Projection-GIS/JPL/ISSM/exp05")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(3), files[0].Size)

	rc, err := l.Open(context.Background(), files[0].Name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}
