// Package hail computes the Witt et al. (1998) hail products from a volume of
// PPI sweeps: per-sweep hail kinetic energy, the Severe Hail Index (SHI)
// integrated on the lowest sweep's geometry, the Maximum Estimated Size of Hail
// (MESH) and the Probability of Severe Hail (POSH).
//
// The computation is pure. Compute never mutates the caller's arrays, performs
// no I/O and keeps no state between calls.
package hail

import (
	"fmt"
	"runtime"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
)

const (
	// MinSweeps is the hard lower bound on the number of sweeps.
	MinSweeps = 2
	// RecommendedSweeps is the count below which an advisory is attached.
	RecommendedSweeps = 10

	DefaultMinRangeKm = 10.0
	DefaultMaxRangeKm = 150.0
	DefaultMethod     = domain.MeshMH2019P75
)

// Options controls a single retrieval.
type Options struct {
	Band   domain.RadarBand
	Levels *domain.Levels

	// MinRangeKm and MaxRangeKm bound the ground range (km) of valid cells, exclusive.
	MinRangeKm float64
	MaxRangeKm float64

	Method domain.MeshMethod

	// CorrectCBand applies the Brook et al. 2023 reflectivity correction when Band is C.
	CorrectCBand bool

	// Workers bounds the goroutines used for column integration. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns S-band options with the standard range window and
// MESH calibration. Levels must still be supplied.
func DefaultOptions() Options {
	return Options{
		Band:         domain.BandS,
		MinRangeKm:   DefaultMinRangeKm,
		MaxRangeKm:   DefaultMaxRangeKm,
		Method:       DefaultMethod,
		CorrectCBand: true,
	}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Compute runs the full retrieval over vol. Validation failures wrap
// domain.ErrInvalidArgument or domain.ErrInsufficientSweeps. A volume with
// fewer than RecommendedSweeps sweeps still produces products, with an
// advisory attached.
func Compute(vol domain.Volume, opts Options) (*domain.Products, error) {
	in, err := Normalize(vol, opts)
	if err != nil {
		return nil, err
	}

	sweeps := preprocess(in)
	shi := integrate(sweeps, opts.workers())

	mesh, err := MESH(shi, in.Method)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	posh := POSH(shi, in.Melt)

	products := pack(in, sweeps, shi, mesh, posh)
	products.Summary = summarize(len(in.Sweeps), shi, mesh, posh)
	products.Advisories = in.Advisories
	return products, nil
}
