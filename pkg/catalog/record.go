// Package catalog builds and serves a searchable index of gridded
// ice-sheet-model output files held in a remote object store. Paths in
// the store follow the hierarchy
//
//	<root>/Projection-<ICE_SHEET>/<INSTITUTION>/<MODEL>/<EXPERIMENT>/<FILENAME>.nc
//
// and each file's metadata is recovered from its path alone. Building
// the catalog crawls the store once (minutes for the full archive), so
// the result is persisted to a columnar cache file and reloaded on
// subsequent runs.
package catalog

import (
	"sort"
)

// Record is one row of the catalog: a single remote file with the
// metadata parsed from its path.
type Record struct {
	Variable    string `parquet:"variable" yaml:"variable" json:"variable"`
	IceSheet    string `parquet:"ice_sheet" yaml:"ice_sheet" json:"ice_sheet"`
	Institution string `parquet:"institution" yaml:"institution" json:"institution"`
	ModelName   string `parquet:"model_name" yaml:"model_name" json:"model_name"`
	Experiment  string `parquet:"experiment" yaml:"experiment" json:"experiment"`
	URL         string `parquet:"url" yaml:"url" json:"url"`
	SizeBytes   int64  `parquet:"size_bytes" yaml:"size_bytes" json:"size_bytes"`
}

// Model returns the display key for the record's model, derived as
// institution/model_name. It is never stored independently.
func (r Record) Model() string {
	return r.Institution + "/" + r.ModelName
}

// Catalog is an ordered collection of records, sorted by
// (ice_sheet, institution, model_name, experiment, variable) for
// deterministic inspection. It is immutable once built; rebuilding
// replaces it wholesale.
type Catalog struct {
	records []Record
}

// New creates a catalog from records. The records are sorted into
// canonical order; the slice is not retained.
func New(records []Record) *Catalog {
	c := &Catalog{records: append([]Record(nil), records...)}
	c.sort()
	return c
}

func (c *Catalog) sort() {
	sort.SliceStable(c.records, func(i, j int) bool {
		a, b := c.records[i], c.records[j]
		if a.IceSheet != b.IceSheet {
			return a.IceSheet < b.IceSheet
		}
		if a.Institution != b.Institution {
			return a.Institution < b.Institution
		}
		if a.ModelName != b.ModelName {
			return a.ModelName < b.ModelName
		}
		if a.Experiment != b.Experiment {
			return a.Experiment < b.Experiment
		}
		return a.Variable < b.Variable
	})
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns the records in canonical order. The returned slice is
// a copy; the catalog stays immutable.
func (c *Catalog) Records() []Record {
	return append([]Record(nil), c.records...)
}

// TotalSize returns the sum of all record sizes in bytes.
func (c *Catalog) TotalSize() int64 {
	var total int64
	for _, r := range c.records {
		total += r.SizeBytes
	}
	return total
}

// Filter describes a catalog subset. Empty fields match everything.
type Filter struct {
	IceSheet    string
	Institution string
	Model       string // display key institution/model_name
	Experiment  string
	Variable    string
}

func (f Filter) matches(r Record) bool {
	if f.IceSheet != "" && r.IceSheet != f.IceSheet {
		return false
	}
	if f.Institution != "" && r.Institution != f.Institution {
		return false
	}
	if f.Model != "" && r.Model() != f.Model {
		return false
	}
	if f.Experiment != "" && r.Experiment != f.Experiment {
		return false
	}
	if f.Variable != "" && r.Variable != f.Variable {
		return false
	}
	return true
}

// Select returns a new catalog containing only records matching f.
func (c *Catalog) Select(f Filter) *Catalog {
	var out []Record
	for _, r := range c.records {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return &Catalog{records: out}
}

// IceSheets returns the distinct ice sheet identifiers, sorted.
func (c *Catalog) IceSheets() []string {
	return c.distinct(func(r Record) string { return r.IceSheet })
}

// Variables returns the distinct variable names, sorted.
func (c *Catalog) Variables() []string {
	return c.distinct(func(r Record) string { return r.Variable })
}

// Models returns the distinct model display keys, sorted.
func (c *Catalog) Models() []string {
	return c.distinct(func(r Record) string { return r.Model() })
}

// Experiments returns the distinct experiment identifiers, sorted.
func (c *Catalog) Experiments() []string {
	return c.distinct(func(r Record) string { return r.Experiment })
}

func (c *Catalog) distinct(key func(Record) string) []string {
	seen := make(map[string]struct{}, len(c.records))
	var out []string
	for _, r := range c.records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
