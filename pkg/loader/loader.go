package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/cryoscan/cryoscan/pkg/decode"
	"github.com/cryoscan/cryoscan/pkg/errors"
	"github.com/cryoscan/cryoscan/pkg/grid"
	"github.com/cryoscan/cryoscan/pkg/logging"
	"github.com/cryoscan/cryoscan/pkg/store"
	"github.com/cryoscan/cryoscan/pkg/timefix"
)

// File describes one remote file to load. Key is the caller's display
// label and must be unique within a batch; later duplicates replace
// earlier ones in the result.
type File struct {
	Key        string
	Model      string
	Experiment string
	URL        string
	SizeBytes  int64
}

// ProgressFunc receives loading progress. percent is in [0, 100] and
// never decreases within one batch; status is a human-readable line
// suitable for direct display.
type ProgressFunc func(percent float64, status string)

// TimeSelection names which time step of each file the caller intends
// to display first. Every step is always retained in the loaded arrays,
// so changing the displayed step later needs no reload.
type TimeSelection struct {
	// Step indexes into each file's time axis. Negative means all
	// steps with no initial preference.
	Step int
}

// AllSteps selects no particular initial time step.
var AllSteps = TimeSelection{Step: -1}

// YearRange is the span of calendar years covered by a loaded batch.
type YearRange struct {
	Min int
	Max int
}

// Decoder turns a raw file into a dataset. The production decoder reads
// NetCDF; tests substitute synthetic datasets.
type Decoder func(rsc io.ReadSeekCloser) (*grid.Dataset, error)

// Loader fetches, decodes, and normalizes batches of files.
type Loader struct {
	opener store.Opener
	norm   grid.Normalizer
	cache  *Cache
	decode Decoder
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache attaches a decode cache. Without one, every load fetches
// and decodes from scratch.
func WithCache(c *Cache) Option {
	return func(l *Loader) { l.cache = c }
}

// WithNormalizer overrides the grid normalizer applied after decode.
func WithNormalizer(n grid.Normalizer) Option {
	return func(l *Loader) { l.norm = n }
}

// WithDecoder overrides the file decoder.
func WithDecoder(d Decoder) Option {
	return func(l *Loader) { l.decode = d }
}

// New creates a Loader reading files through opener. By default it
// decodes NetCDF, normalizes coordinates against the standard grids,
// and runs without a cache.
func New(opener store.Opener, opts ...Option) *Loader {
	l := &Loader{
		opener: opener,
		norm:   &grid.Standard{},
		decode: decode.Read,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadMany loads variable from each file in order. Files are processed
// sequentially; each fetch-and-decode runs off the calling goroutine so
// the caller's loop stays responsive to progress updates.
//
// A file that fails to fetch, decode, or carry the variable is reported
// through progress and skipped; the rest of the batch still loads. The
// returned collection preserves input order and holds only the files
// that succeeded, each with sentinel values rewritten to NaN. The year
// range spans the time coordinates of every loaded file, or is nil when
// none carried a time axis.
//
// An empty files slice reports completion immediately and returns an
// empty collection. Callers that need at least one dataset must check
// the result's length themselves.
func (l *Loader) LoadMany(ctx context.Context, files []File, variable string, sentinels []float64, sel TimeSelection, progress ProgressFunc) (*grid.Datasets, *YearRange) {
	if progress == nil {
		progress = func(float64, string) {}
	}
	out := grid.NewDatasets()
	total := len(files)
	if total == 0 {
		progress(100, "No files to load")
		return out, nil
	}

	log := logging.Default()
	var timeCoords [][]timefix.Date
	for i, f := range files {
		sizeMB := float64(f.SizeBytes) / (1 << 20)
		progress(float64(i)/float64(total)*100,
			fmt.Sprintf("Loading %s - %s... (%.1f MB)", f.Model, f.Experiment, sizeMB))

		arr, err := l.loadOne(ctx, f.URL, variable)
		if err != nil {
			done := float64(i+1) / float64(total) * 100
			if errors.IsVariableMissing(err) {
				log.Warn().Str("url", f.URL).Str("variable", variable).Msg("variable not present")
				progress(done, fmt.Sprintf("Warning: %s not found in %s", variable, f.Key))
			} else {
				log.Error().Err(err).Str("url", f.URL).Msg("failed to load dataset")
				progress(done, fmt.Sprintf("Error loading %s: %v", f.Key, err))
			}
			continue
		}

		arr.ReplaceSentinels(sentinels)
		if arr.HasTime() {
			timeCoords = append(timeCoords, arr.Time)
			if sel.Step >= arr.Steps() {
				log.Warn().Str("key", f.Key).Int("step", sel.Step).Int("steps", arr.Steps()).
					Msg("selected time step beyond file's time axis")
			}
		}
		out.Add(f.Key, arr)
	}

	var yr *YearRange
	if lo, hi, ok := timefix.YearRange(timeCoords...); ok {
		yr = &YearRange{Min: lo, Max: hi}
	}
	progress(100, fmt.Sprintf("Loaded %d datasets successfully", out.Len()))
	return out, yr
}

// loadOne returns the named variable from url, consulting the cache
// first. Cached entries are independent copies, so sentinel rewriting
// by one caller never leaks into another.
func (l *Loader) loadOne(ctx context.Context, url, variable string) (*grid.DataArray, error) {
	if l.cache != nil {
		if arr, ok := l.cache.Get(url, variable); ok {
			return arr, nil
		}
	}

	type result struct {
		arr *grid.DataArray
		err error
	}
	ch := make(chan result, 1)
	go func() {
		arr, err := l.fetchAndDecode(ctx, url, variable)
		ch <- result{arr: arr, err: err}
	}()
	r := <-ch
	if r.err != nil {
		return nil, r.err
	}

	if l.cache != nil {
		l.cache.Put(url, variable, r.arr)
	}
	return r.arr, nil
}

func (l *Loader) fetchAndDecode(ctx context.Context, url, variable string) (*grid.DataArray, error) {
	rsc, err := l.opener.Open(ctx, url)
	if err != nil {
		return nil, &errors.DecodeError{URL: url, Variable: variable, Err: err}
	}
	defer rsc.Close()

	ds, err := l.decode(rsc)
	if err != nil {
		return nil, &errors.DecodeError{URL: url, Variable: variable, Err: err}
	}
	if l.norm != nil {
		ds, err = l.norm.CorrectGridCoordinates(ds, variable)
		if err != nil {
			return nil, &errors.DecodeError{URL: url, Variable: variable, Err: err}
		}
	}

	arr, err := ds.Extract(variable)
	if err != nil {
		if errors.IsVariableMissing(err) {
			return nil, &errors.VariableMissingError{Variable: variable, URL: url}
		}
		return nil, err
	}
	return arr, nil
}
