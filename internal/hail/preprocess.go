package hail

import (
	"math"
	"slices"
	"sync"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
	"github.com/couchcryptid/storm-data-hail/internal/radar"
	"gonum.org/v1/gonum/floats"
)

// geometry holds a sweep's gate positions in meters; z is AMSL.
type geometry struct {
	x, y, z domain.Grid
}

// sweepFields holds the derived, read-only arrays for one sweep.
type sweepFields struct {
	sweep domain.Sweep
	geom  geometry

	dz    domain.Grid
	ke    domain.Grid
	shi   domain.Grid // W_T * KE * dz
	valid []bool
}

// reproject broadcasts a sweep's azimuths, ranges and elevation onto its grid
// and converts them to ground-relative coordinates.
func reproject(s domain.Sweep, altitude float64) geometry {
	nAz, nRg := len(s.Azimuths), len(s.Ranges)
	ranges := domain.NewGrid(nAz, nRg)
	azimuths := domain.NewGrid(nAz, nRg)
	elevations := domain.NewGridFilled(nAz, nRg, s.Elevation)
	for i, az := range s.Azimuths {
		copy(ranges.Row(i), s.Ranges)
		row := azimuths.Row(i)
		for j := range row {
			row[j] = az
		}
	}

	x, y, z := radar.AntennaToCartesian(ranges, azimuths, elevations)
	floats.AddConst(altitude, z.Data)
	return geometry{x: x, y: y, z: z}
}

// preprocess derives the weighted fields for every sweep. Sweeps are processed
// concurrently; each goroutine writes only its own slot.
func preprocess(in *Input) []sweepFields {
	n := len(in.Sweeps)
	out := make([]sweepFields, n)

	var wg sync.WaitGroup
	for i := range in.Sweeps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = sweepFields{sweep: in.Sweeps[i], geom: reproject(in.Sweeps[i], in.RadarAltitude)}
		}()
	}
	wg.Wait()

	lowest := groundRange(out[0].geom)

	for i := range out {
		wg.Add(1)
		go func() {
			defer wg.Done()
			derive(in, out, i, lowest)
		}()
	}
	wg.Wait()
	return out
}

// groundRange is the horizontal distance of each gate from the radar.
func groundRange(g geometry) domain.Grid {
	gr := domain.NewGrid(g.x.Azimuths, g.x.Ranges)
	for k := range gr.Data {
		gr.Data[k] = math.Hypot(g.x.Data[k], g.y.Data[k])
	}
	return gr
}

// derive fills the weighted fields of sweep i. It reads the geometry of the
// neighbouring sweeps and writes only all[i].
func derive(in *Input, all []sweepFields, i int, lowestGroundRange domain.Grid) {
	f := &all[i]
	n := f.sweep.Reflectivity.Len()

	refl := f.sweep.Reflectivity.Data
	if in.bandCorrected() {
		refl = make([]float64, n)
		floats.ScaleTo(refl, cbandSlope, f.sweep.Reflectivity.Data)
		floats.AddConst(cbandIntercept, refl)
	}

	f.dz = verticalSpacing(in, all, i)

	// KineticEnergy limits reflectivity to ±100 dBZ before the power law.
	f.ke = domain.NewGrid(f.sweep.Reflectivity.Azimuths, f.sweep.Reflectivity.Ranges)
	wt := make([]float64, n)
	for k, z := range refl {
		f.ke.Data[k] = KineticEnergy(z)
		wt[k] = TemperatureWeight(f.geom.z.Data[k], in.Melt, in.Minus20)
	}

	f.shi = domain.NewGrid(f.ke.Azimuths, f.ke.Ranges)
	floats.MulTo(f.shi.Data, wt, f.ke.Data)
	floats.Mul(f.shi.Data, f.dz.Data)

	// Validity is tested against the lowest sweep's ground range. A sweep on a
	// different grid has no cell-wise counterpart there, so it uses its own.
	gr := lowestGroundRange
	if !gr.SameShape(f.ke) {
		gr = groundRange(f.geom)
	}
	f.valid = make([]bool, n)
	for k := range f.valid {
		f.valid[k] = wt[k] > 0 && f.ke.Data[k] > 0 &&
			gr.Data[k] > in.MinRange && gr.Data[k] < in.MaxRange
	}
}

// verticalSpacing returns the beam-height spacing around sweep i: a forward
// difference for the lowest sweep, a backward difference for the topmost and
// a centered difference in between.
func verticalSpacing(in *Input, all []sweepFields, i int) domain.Grid {
	last := len(all) - 1
	lo, hi, scale := i-1, i+1, 0.5
	switch i {
	case 0:
		lo, scale = 0, 1
	case last:
		hi, scale = last, 1
	}

	target := all[i].sweep
	dz := domain.NewGrid(len(target.Azimuths), len(target.Ranges))
	floats.SubTo(dz.Data,
		heightsAt(in, all[hi].geom, all[hi].sweep, target),
		heightsAt(in, all[lo].geom, all[lo].sweep, target))
	if scale != 1 {
		floats.Scale(scale, dz.Data)
	}
	return dz
}

// heightsAt returns the heights of other's beam at the gates of target. When
// both sweeps share a range vector and shape this is other's own height field;
// otherwise other's beam height is evaluated at target's slant ranges.
//
// Only the geom and sweep fields of a neighbour are read, since its derived
// fields are being written concurrently.
func heightsAt(in *Input, g geometry, other, target domain.Sweep) []float64 {
	z := g.z
	if z.Azimuths == len(target.Azimuths) && slices.Equal(other.Ranges, target.Ranges) {
		return z.Data
	}
	out := make([]float64, len(target.Azimuths)*len(target.Ranges))
	for i := range target.Azimuths {
		for j, r := range target.Ranges {
			_, _, h := radar.ToCartesian(r, 0, other.Elevation)
			out[i*len(target.Ranges)+j] = h + in.RadarAltitude
		}
	}
	return out
}
