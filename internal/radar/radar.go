// Package radar holds the geometric and numeric primitives shared by radar
// products: beam-to-ground coordinate conversion and a log that tolerates
// non-positive input.
package radar

import (
	"math"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// EffectiveRadius is the 4/3 effective Earth radius used for standard-atmosphere
// beam propagation.
const EffectiveRadius = EarthRadius * 4.0 / 3.0

// ToCartesian converts one gate from antenna coordinates (range in meters,
// azimuth and elevation in degrees) to radar-relative Cartesian meters.
// x points east, y north and z is height above the antenna.
func ToCartesian(rng, azimuth, elevation float64) (x, y, z float64) {
	thetaE := elevation * math.Pi / 180
	thetaA := azimuth * math.Pi / 180
	const r = EffectiveRadius

	z = math.Sqrt(rng*rng+r*r+2*rng*r*math.Sin(thetaE)) - r
	s := r * math.Asin(rng*math.Cos(thetaE)/(r+z))
	x = s * math.Sin(thetaA)
	y = s * math.Cos(thetaA)
	return x, y, z
}

// AntennaToCartesian applies ToCartesian cell by cell to broadcast range,
// azimuth and elevation grids of identical shape. The inputs are not modified.
func AntennaToCartesian(ranges, azimuths, elevations domain.Grid) (x, y, z domain.Grid) {
	x = domain.NewGrid(ranges.Azimuths, ranges.Ranges)
	y = domain.NewGrid(ranges.Azimuths, ranges.Ranges)
	z = domain.NewGrid(ranges.Azimuths, ranges.Ranges)
	for k := range ranges.Data {
		x.Data[k], y.Data[k], z.Data[k] = ToCartesian(ranges.Data[k], azimuths.Data[k], elevations.Data[k])
	}
	return x, y, z
}

// LogFloor is returned by SafeLog for arguments at or below logEpsilon.
const LogFloor = -10.0

const logEpsilon = 1e-10

// SafeLog returns ln(x) for x > 1e-10 and LogFloor otherwise, including NaN.
// It never returns NaN or -Inf.
func SafeLog(x float64) float64 {
	if !(x > logEpsilon) {
		return LogFloor
	}
	return math.Log(x)
}
