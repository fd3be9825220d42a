package grid

import (
	"math"
)

// Normalizer corrects the spatial coordinate metadata of a decoded
// dataset so that downstream comparison can assume a shared grid.
// Implementations must leave output coordinates monotonic, matching one
// of the standard resolutions for the ice sheet domain, and covering the
// domain's bounding box.
type Normalizer interface {
	CorrectGridCoordinates(ds *Dataset, dataVar string) (*Dataset, error)
}

// Domain describes the published grid family of one ice sheet: its
// bounding box in projected meters and the standard resolutions output
// is diagnosed on.
type Domain struct {
	IceSheet string

	MinX, MaxX float64
	MinY, MaxY float64

	// Resolutions in meters, finest first.
	Resolutions []float64
}

// The two ice sheet domains in the archive. Antarctica uses a polar
// stereographic grid centered on the pole; Greenland a north polar
// stereographic grid offset to cover the island.
var (
	Antarctica = Domain{
		IceSheet:    "AIS",
		MinX:        -3040000,
		MaxX:        3040000,
		MinY:        -3040000,
		MaxY:        3040000,
		Resolutions: []float64{1000, 2000, 4000, 8000, 16000, 32000},
	}

	Greenland = Domain{
		IceSheet:    "GIS",
		MinX:        -720000,
		MaxX:        960000,
		MinY:        -3450000,
		MaxY:        -570000,
		Resolutions: []float64{1000, 2000, 4000, 5000},
	}
)

// Domains lists all known ice sheet domains.
var Domains = []Domain{Antarctica, Greenland}

// counts returns the expected coordinate vector lengths at resolution r.
func (d Domain) counts(r float64) (nx, ny int) {
	nx = int((d.MaxX-d.MinX)/r) + 1
	ny = int((d.MaxY-d.MinY)/r) + 1
	return nx, ny
}

// Coordinates builds the standard coordinate vectors at resolution r,
// ascending, cell centers on the published grid.
func (d Domain) Coordinates(r float64) (x, y []float64) {
	nx, ny := d.counts(r)
	x = make([]float64, nx)
	for i := range x {
		x[i] = d.MinX + float64(i)*r
	}
	y = make([]float64, ny)
	for i := range y {
		y[i] = d.MinY + float64(i)*r
	}
	return x, y
}

// DetectGrid identifies the domain and resolution from spatial dimension
// lengths alone. ok is false when no standard grid matches.
func DetectGrid(nx, ny int) (Domain, float64, bool) {
	for _, d := range Domains {
		for _, r := range d.Resolutions {
			ex, ey := d.counts(r)
			if nx == ex && ny == ey {
				return d, r, true
			}
		}
	}
	return Domain{}, 0, false
}

// Standard is the default Normalizer. It detects the domain grid from
// the data variable's spatial shape and rebuilds coordinate vectors that
// are missing, non-monotonic, expressed in kilometers instead of meters,
// or that fail to cover the domain bounding box. Datasets on no known
// standard grid are passed through unchanged.
type Standard struct{}

// CorrectGridCoordinates implements Normalizer. The dataset is corrected
// in place and returned.
func (Standard) CorrectGridCoordinates(ds *Dataset, dataVar string) (*Dataset, error) {
	v, ok := ds.Vars[dataVar]
	if !ok {
		// Nothing to key the detection on; variable absence surfaces
		// later at extraction.
		return ds, nil
	}
	ny, nx := v.SpatialShape()
	if nx == 0 || ny == 0 {
		return ds, nil
	}

	domain, res, ok := DetectGrid(nx, ny)
	if !ok {
		return ds, nil
	}

	if !coordConforms(ds.X, domain.MinX, domain.MaxX, res) || !coordConforms(ds.Y, domain.MinY, domain.MaxY, res) {
		ds.X, ds.Y = domain.Coordinates(res)
	}
	return ds, nil
}

// coordConforms reports whether a coordinate vector is already on the
// standard grid: monotonic ascending, meter-scaled, and covering the
// domain bounds. A vector in kilometers or with shuffled values fails.
func coordConforms(coord []float64, lo, hi, res float64) bool {
	if len(coord) == 0 {
		return false
	}
	for i := 1; i < len(coord); i++ {
		if coord[i] <= coord[i-1] {
			return false
		}
	}
	// Half a cell of slack covers centers-vs-edges disagreements.
	tol := res / 2
	return math.Abs(coord[0]-lo) <= tol && math.Abs(coord[len(coord)-1]-hi) <= tol
}

// VerifyLatLonConsistency checks that auxiliary latitude/longitude
// vectors, when present, are plausible angles. Projected files often
// carry these as a convenience; a file whose lat/lon are out of range
// signals a broken projection rather than a fixable coordinate problem.
func VerifyLatLonConsistency(lat, lon []float64) bool {
	for _, v := range lat {
		if v < -90 || v > 90 {
			return false
		}
	}
	for _, v := range lon {
		if v < -360 || v > 360 {
			return false
		}
	}
	return true
}
