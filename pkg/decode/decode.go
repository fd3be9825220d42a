// Package decode reads self-describing gridded array files (NetCDF,
// both classic and HDF5-backed) into the in-memory grid types. Time
// metadata is repaired before date decoding, so files with the
// archive's recurring attribute defects decode like clean ones.
package decode

import (
	"fmt"
	"io"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/cryoscan/cryoscan/pkg/errors"
	"github.com/cryoscan/cryoscan/pkg/grid"
	"github.com/cryoscan/cryoscan/pkg/logging"
	"github.com/cryoscan/cryoscan/pkg/timefix"
)

// knownDims are the dimensions a data variable may use.
var knownDims = map[string]bool{
	grid.DimTime: true,
	grid.DimY:    true,
	grid.DimX:    true,
}

// Read decodes a NetCDF stream into a Dataset. Every variable is fully
// materialized; the reader may be closed as soon as Read returns.
//
// Variables on dimensions other than {time, y, x} (grid mapping
// variables, cell bounds, auxiliary lat/lon) are not carried into the
// dataset, except that auxiliary latitude/longitude are sanity-checked
// and logged when implausible.
func Read(rsc io.ReadSeekCloser) (*grid.Dataset, error) {
	g, err := netcdf.New(rsc)
	if err != nil {
		return nil, errors.WrapParse("netcdf", "", err)
	}
	defer g.Close()

	ds := &grid.Dataset{Vars: make(map[string]*grid.DataArray)}

	for _, name := range g.ListVariables() {
		v, err := g.GetVariable(name)
		if err != nil {
			return nil, errors.WrapParse("netcdf", name, err)
		}

		switch name {
		case grid.DimX:
			ds.X, err = flatten1d(v.Values)
			if err != nil {
				return nil, errors.WrapParse("netcdf", name, err)
			}
		case grid.DimY:
			ds.Y, err = flatten1d(v.Values)
			if err != nil {
				return nil, errors.WrapParse("netcdf", name, err)
			}
		case grid.DimTime:
			ds.Time, err = decodeTime(v)
			if err != nil {
				return nil, err
			}
		case "lat", "latitude", "lon", "longitude":
			checkLatLon(name, v)
		default:
			arr, ok, err := decodeData(name, v)
			if err != nil {
				return nil, errors.WrapParse("netcdf", name, err)
			}
			if ok {
				ds.Vars[name] = arr
			}
		}
	}

	return ds, nil
}

// decodeData converts one data variable. Variables whose dimensions are
// not a 2-D or 3-D arrangement of {time, y, x} are skipped.
func decodeData(name string, v *api.Variable) (*grid.DataArray, bool, error) {
	if len(v.Dimensions) < 2 || len(v.Dimensions) > 3 {
		return nil, false, nil
	}
	for _, d := range v.Dimensions {
		if !knownDims[d] {
			return nil, false, nil
		}
	}

	vals, shape, err := flatten(v.Values)
	if err != nil {
		return nil, false, err
	}
	if len(shape) != len(v.Dimensions) {
		return nil, false, fmt.Errorf("variable %s: %d dimensions but rank-%d payload", name, len(v.Dimensions), len(shape))
	}

	return &grid.DataArray{
		Name:   name,
		Dims:   append([]string(nil), v.Dimensions...),
		Shape:  shape,
		Values: vals,
		Units:  attrString(v.Attributes, "units"),
	}, true, nil
}

// decodeTime converts the raw time coordinate through the repair
// pipeline into calendar dates.
func decodeTime(v *api.Variable) ([]timefix.Date, error) {
	raw, err := flatten1d(v.Values)
	if err != nil {
		return nil, errors.WrapParse("netcdf", grid.DimTime, err)
	}

	attrs := make(map[string]string)
	for _, key := range []string{timefix.UnitsAttr, timefix.UnitTypoAttr, timefix.CalendarAttr} {
		if s := attrString(v.Attributes, key); s != "" {
			attrs[key] = s
		}
	}
	attrs = timefix.Repair(attrs)

	return timefix.DecodeTimes(raw, attrs[timefix.UnitsAttr], attrs[timefix.CalendarAttr])
}

// checkLatLon logs auxiliary lat/lon vectors that hold impossible
// angles; they indicate a broken projection upstream.
func checkLatLon(name string, v *api.Variable) {
	vals, _, err := flatten(v.Values)
	if err != nil {
		return
	}
	var lat, lon []float64
	if name == "lat" || name == "latitude" {
		lat = vals
	} else {
		lon = vals
	}
	if !grid.VerifyLatLonConsistency(lat, lon) {
		logging.Warn().Str("variable", name).Msg("Auxiliary coordinate out of range")
	}
}

// attrString extracts a string-valued attribute, tolerating the
// single-element string slices some writers emit.
func attrString(am api.AttributeMap, key string) string {
	if am == nil {
		return ""
	}
	val, has := am.Get(key)
	if !has {
		return ""
	}
	switch s := val.(type) {
	case string:
		return s
	case []string:
		if len(s) > 0 {
			return s[0]
		}
	}
	return ""
}
