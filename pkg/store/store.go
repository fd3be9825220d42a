// Package store defines the remote object store boundary used by the
// catalog builder and the dataset loader. A store is anything that can
// list a hierarchical namespace of objects and open an object for
// reading. Implementations must return fully seekable readers; callers
// materialize file contents before releasing the connection.
package store

import (
	"context"
	"io"
)

// Entry describes one object or pseudo-directory returned by a listing.
type Entry struct {
	// Name is the full path of the entry within the store, including the
	// root segment, e.g. "ismip6/Projection-AIS/AWI/PISM1/exp05/lithk_AIS_AWI_PISM1_exp05.nc".
	Name string

	// Size is the object size in bytes. Zero when the store does not
	// report sizes; a missing size never fails a listing.
	Size int64

	// IsDir reports whether the entry is a pseudo-directory prefix.
	IsDir bool
}

// Lister lists one level of the store hierarchy.
type Lister interface {
	// List returns the immediate children of prefix, directories first is
	// not guaranteed. The prefix uses forward slashes and includes the
	// store root segment.
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// Opener opens an object by its URL for reading.
type Opener interface {
	// Open returns a seekable reader over the full object contents.
	Open(ctx context.Context, url string) (io.ReadSeekCloser, error)
}

// Store combines listing and opening.
type Store interface {
	Lister
	Opener
}
