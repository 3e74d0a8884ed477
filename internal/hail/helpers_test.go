package hail

import (
	"github.com/couchcryptid/storm-data-hail/internal/domain"
)

// uniformSweep builds a sweep with the same reflectivity in every gate.
func uniformSweep(elevation float64, azimuths, ranges []float64, dbz float64) domain.Sweep {
	return domain.Sweep{
		Elevation:    elevation,
		Azimuths:     azimuths,
		Ranges:       ranges,
		Reflectivity: domain.NewGridFilled(len(azimuths), len(ranges), dbz),
	}
}

func levels(a, b float64) *domain.Levels {
	return &domain.Levels{FreezingLevel: a, Minus20Level: b}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Levels = levels(3000, 5000)
	return opts
}

// stormVolume is a small convective volume whose gates sit between the melt
// and -20 °C layers for levels (3000, 5000) and inside the default range window.
func stormVolume(elevations ...float64) domain.Volume {
	az := []float64{0, 90, 180, 270}
	rg := []float64{20000, 22500, 25000}
	vol := domain.Volume{}
	for _, el := range elevations {
		vol.Sweeps = append(vol.Sweeps, uniformSweep(el, az, rg, 55))
	}
	return vol
}
