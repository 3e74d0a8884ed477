package hail

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
)

// Input is a validated volume with its sweeps in ascending elevation order.
type Input struct {
	Sweeps        []domain.Sweep
	RadarAltitude float64

	Band         domain.RadarBand
	Melt         float64
	Minus20      float64
	MinRange     float64 // meters
	MaxRange     float64 // meters
	Method       domain.MeshMethod
	CorrectCBand bool
	Advisories   []domain.Advisory
}

// Normalize validates opts and vol and returns the sweeps sorted by elevation.
// Ties keep their input order. The caller's sweep slice is not reordered.
func Normalize(vol domain.Volume, opts Options) (*Input, error) {
	if !opts.Band.Valid() {
		return nil, fmt.Errorf("radar band must be C or S, got %q: %w", opts.Band, domain.ErrInvalidArgument)
	}
	if opts.Levels == nil {
		return nil, fmt.Errorf("missing levels for freezing level and -20C level: %w", domain.ErrInvalidArgument)
	}
	if !opts.Method.Valid() {
		return nil, fmt.Errorf("unknown MESH method %q, use witt1998, mh2019_75 or mh2019_95: %w",
			opts.Method, domain.ErrInvalidArgument)
	}
	if opts.MinRangeKm < 0 || opts.MaxRangeKm <= opts.MinRangeKm {
		return nil, fmt.Errorf("range window [%g, %g] km is empty: %w",
			opts.MinRangeKm, opts.MaxRangeKm, domain.ErrInvalidArgument)
	}
	for i, s := range vol.Sweeps {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("sweep %d: %w", i, err)
		}
	}

	sweeps := slices.Clone(vol.Sweeps)
	slices.SortStableFunc(sweeps, func(a, b domain.Sweep) int {
		return cmp.Compare(a.Elevation, b.Elevation)
	})

	if len(sweeps) < MinSweeps {
		return nil, fmt.Errorf("require more than one sweep to calculate MESH, got %d: %w",
			len(sweeps), domain.ErrInsufficientSweeps)
	}

	in := &Input{
		Sweeps:        sweeps,
		RadarAltitude: vol.RadarAltitude,
		Band:          opts.Band,
		Melt:          opts.Levels.Melt(),
		Minus20:       opts.Levels.Minus20(),
		MinRange:      opts.MinRangeKm * 1000,
		MaxRange:      opts.MaxRangeKm * 1000,
		Method:        opts.Method,
		CorrectCBand:  opts.CorrectCBand,
	}
	if len(sweeps) < RecommendedSweeps {
		in.Advisories = append(in.Advisories, domain.Advisory{
			Code: domain.AdvisorySweepCountLow,
			Message: fmt.Sprintf("number of sweeps is %d, fewer than %d is not recommended for MESH calculations",
				len(sweeps), RecommendedSweeps),
		})
	}
	return in, nil
}

// bandCorrected reports whether the C-band reflectivity correction applies.
func (in *Input) bandCorrected() bool {
	return in.Band == domain.BandC && in.CorrectCBand
}
