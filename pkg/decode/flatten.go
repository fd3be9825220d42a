package decode

import (
	"fmt"
	"reflect"
)

// flatten converts the arbitrarily nested slice value a NetCDF variable
// decodes to into a flat row-major float64 slice plus its shape. All
// numeric element types are widened to float64.
func flatten(v any) ([]float64, []int, error) {
	shape, err := shapeOf(v)
	if err != nil {
		return nil, nil, err
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	out := make([]float64, 0, n)
	out, err = appendValues(out, reflect.ValueOf(v), len(shape))
	if err != nil {
		return nil, nil, err
	}
	if len(out) != n {
		return nil, nil, fmt.Errorf("ragged array: got %d values for shape %v", len(out), shape)
	}
	return out, shape, nil
}

// flatten1d is flatten restricted to one-dimensional values, used for
// coordinate vectors.
func flatten1d(v any) ([]float64, error) {
	vals, shape, err := flatten(v)
	if err != nil {
		return nil, err
	}
	if len(shape) != 1 {
		return nil, fmt.Errorf("expected 1-D coordinate, got shape %v", shape)
	}
	return vals, nil
}

func shapeOf(v any) ([]int, error) {
	var shape []int
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			// An empty dimension ends the descent; deeper lengths are
			// unknowable and the value count is zero regardless.
			return shape, nil
		}
		rv = rv.Index(0)
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("value of type %T is not an array", v)
	}
	if !isNumeric(rv.Kind()) {
		return nil, fmt.Errorf("unsupported element type %s", rv.Kind())
	}
	return shape, nil
}

func appendValues(out []float64, rv reflect.Value, depth int) ([]float64, error) {
	if depth == 1 {
		for i := 0; i < rv.Len(); i++ {
			e := rv.Index(i)
			switch {
			case e.CanFloat():
				out = append(out, e.Float())
			case e.CanInt():
				out = append(out, float64(e.Int()))
			case e.CanUint():
				out = append(out, float64(e.Uint()))
			default:
				return nil, fmt.Errorf("unsupported element type %s", e.Kind())
			}
		}
		return out, nil
	}
	for i := 0; i < rv.Len(); i++ {
		var err error
		out, err = appendValues(out, rv.Index(i), depth-1)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
