// Package grid holds the in-memory representation of decoded model
// output: labeled arrays with dimensions among {time, y, x}, the
// multi-variable container a file decodes into, and the normalizer that
// reconciles coordinate vectors with the standard grids each ice sheet
// domain is published on.
package grid

import (
	"fmt"
	"math"

	"github.com/cryoscan/cryoscan/pkg/errors"
	"github.com/cryoscan/cryoscan/pkg/timefix"
)

// Dimension names used throughout.
const (
	DimTime = "time"
	DimY    = "y"
	DimX    = "x"
)

// DataArray is a labeled numeric array, 2-D (y, x) or 3-D (time, y, x),
// stored row-major with the trailing two dimensions spatial.
type DataArray struct {
	Name   string
	Dims   []string
	Shape  []int
	Values []float64

	// Coordinate vectors. X and Y are meters in the projection of the
	// ice sheet domain; Time is present only for 3-D arrays.
	X    []float64
	Y    []float64
	Time []timefix.Date

	// Units is the variable's units attribute, empty when absent.
	Units string
}

// HasTime reports whether the array carries a time dimension with a
// decoded time coordinate.
func (a *DataArray) HasTime() bool {
	return len(a.Dims) > 0 && a.Dims[0] == DimTime && len(a.Time) > 0
}

// SpatialShape returns the lengths of the trailing two dimensions.
func (a *DataArray) SpatialShape() (ny, nx int) {
	n := len(a.Shape)
	if n < 2 {
		return 0, 0
	}
	return a.Shape[n-2], a.Shape[n-1]
}

// Steps returns the number of time steps, or 1 for a 2-D array.
func (a *DataArray) Steps() int {
	if len(a.Shape) == 3 {
		return a.Shape[0]
	}
	return 1
}

// Step returns the values of one time step as a view into the array.
// All time steps are retained at load time precisely so that stepping
// through time needs no reload. For a 2-D array only step 0 exists.
func (a *DataArray) Step(i int) ([]float64, error) {
	if i < 0 || i >= a.Steps() {
		return nil, fmt.Errorf("time step %d out of range [0,%d): %w", i, a.Steps(), errors.ErrInvalidInput)
	}
	ny, nx := a.SpatialShape()
	plane := ny * nx
	return a.Values[i*plane : (i+1)*plane], nil
}

// ReplaceSentinels rewrites every occurrence of the given sentinel
// values to NaN, in place.
func (a *DataArray) ReplaceSentinels(sentinels []float64) {
	if len(sentinels) == 0 {
		return
	}
	for i, v := range a.Values {
		for _, s := range sentinels {
			if v == s {
				a.Values[i] = math.NaN()
				break
			}
		}
	}
}

// Clone returns a deep copy. The decode cache hands out clones so cached
// entries and caller-owned entries never alias.
func (a *DataArray) Clone() *DataArray {
	if a == nil {
		return nil
	}
	c := &DataArray{
		Name:  a.Name,
		Dims:  append([]string(nil), a.Dims...),
		Shape: append([]int(nil), a.Shape...),
		Units: a.Units,
	}
	c.Values = append([]float64(nil), a.Values...)
	c.X = append([]float64(nil), a.X...)
	c.Y = append([]float64(nil), a.Y...)
	c.Time = append([]timefix.Date(nil), a.Time...)
	return c
}

// Dataset is a decoded multi-variable container: the variables of one
// file plus its shared coordinate vectors.
type Dataset struct {
	Vars map[string]*DataArray

	X    []float64
	Y    []float64
	Time []timefix.Date
}

// Extract returns the named variable with the dataset's coordinate
// vectors attached. The variable keeps all its time steps.
func (d *Dataset) Extract(name string) (*DataArray, error) {
	v, ok := d.Vars[name]
	if !ok {
		return nil, &errors.VariableMissingError{Variable: name}
	}
	v.X = d.X
	v.Y = d.Y
	if len(v.Dims) > 0 && v.Dims[0] == DimTime {
		v.Time = d.Time
	}
	return v, nil
}
