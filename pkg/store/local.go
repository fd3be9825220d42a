package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cryoscan/cryoscan/pkg/errors"
)

// Local serves a store from a directory on disk. The directory name acts
// as the root segment of listed paths, mirroring the bucket layout, which
// makes it useful for tests and offline mirrors of the archive.
type Local struct {
	dir  string
	root string
}

// NewLocal creates a store rooted at dir. Listed paths start with the
// base name of dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir, root: filepath.Base(dir)}
}

// List returns the immediate children of prefix.
func (l *Local) List(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapList(prefix, err)
	}

	rel := strings.TrimPrefix(prefix, l.root)
	rel = strings.Trim(rel, "/")
	dir := filepath.Join(l.dir, filepath.FromSlash(rel))

	infos, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapList(prefix, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		name := l.root + "/" + path(rel, info.Name())
		if info.IsDir() {
			entries = append(entries, Entry{Name: name, IsDir: true})
			continue
		}
		var size int64
		if fi, err := info.Info(); err == nil {
			size = fi.Size()
		}
		entries = append(entries, Entry{Name: name, Size: size})
	}
	return entries, nil
}

// Open opens a file by URL or bare path. Files on disk are already
// seekable, so no copy is made.
func (l *Local) Open(ctx context.Context, rawURL string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapIO("open", rawURL, err)
	}

	p := rawURL
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
	}
	p = strings.TrimPrefix(p, l.root)
	p = strings.Trim(p, "/")

	f, err := os.Open(filepath.Join(l.dir, filepath.FromSlash(p)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapIO("open", rawURL, errors.ErrNotFound)
		}
		return nil, errors.WrapIO("open", rawURL, err)
	}
	return f, nil
}

func path(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
