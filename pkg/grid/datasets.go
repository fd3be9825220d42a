package grid

// Datasets is an insertion-ordered collection of loaded arrays keyed by
// a caller-chosen display key (e.g. "AWI/PISM1 - exp05"). Order matters:
// cross-dataset spatial statistics use the first dataset's coordinates
// as the reference, so the collection must remember which came first.
type Datasets struct {
	keys  []string
	items map[string]*DataArray
}

// NewDatasets creates an empty collection.
func NewDatasets() *Datasets {
	return &Datasets{items: make(map[string]*DataArray)}
}

// Add inserts or replaces an entry. A replaced entry keeps its original
// position.
func (d *Datasets) Add(key string, arr *DataArray) {
	if _, ok := d.items[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.items[key] = arr
}

// Get returns the entry for key.
func (d *Datasets) Get(key string) (*DataArray, bool) {
	arr, ok := d.items[key]
	return arr, ok
}

// Keys returns the display keys in insertion order.
func (d *Datasets) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of entries.
func (d *Datasets) Len() int {
	return len(d.keys)
}

// First returns the first inserted entry, or nil when empty.
func (d *Datasets) First() *DataArray {
	if len(d.keys) == 0 {
		return nil
	}
	return d.items[d.keys[0]]
}
