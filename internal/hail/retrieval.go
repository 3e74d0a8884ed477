package hail

import (
	"fmt"
	"math"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
	"github.com/couchcryptid/storm-data-hail/internal/radar"
)

// meshFit is a power law MESH = coeff * SHI^exponent (mm).
type meshFit struct {
	coeff    float64
	exponent float64
}

var meshFits = map[domain.MeshMethod]meshFit{
	domain.MeshWitt1998:  {coeff: 2.54, exponent: 0.5},
	domain.MeshMH2019P75: {coeff: 15.096, exponent: 0.206},
	domain.MeshMH2019P95: {coeff: 22.157, exponent: 0.212},
}

// MeshValue converts a single SHI value to MESH in mm. Missing SHI stays missing.
func MeshValue(shi float64, method domain.MeshMethod) (float64, error) {
	fit, ok := meshFits[method]
	if !ok {
		return math.NaN(), fmt.Errorf("unknown MESH method %q: %w", method, domain.ErrInvalidArgument)
	}
	return fit.coeff * math.Pow(shi, fit.exponent), nil
}

// MESH converts an SHI grid to maximum estimated hail size (mm).
func MESH(shi domain.Grid, method domain.MeshMethod) (domain.Grid, error) {
	fit, ok := meshFits[method]
	if !ok {
		return domain.Grid{}, fmt.Errorf("unknown MESH method %q, use witt1998, mh2019_75 or mh2019_95: %w",
			method, domain.ErrInvalidArgument)
	}
	out := domain.NewGrid(shi.Azimuths, shi.Ranges)
	for k, v := range shi.Data {
		out.Data[k] = fit.coeff * math.Pow(v, fit.exponent)
	}
	return out, nil
}

// WarningThreshold returns the POSH warning threshold (Jm-1s-1) for a melt
// layer height in meters.
func WarningThreshold(meltHeight float64) float64 {
	return 57.5*(meltHeight/1000) - 121
}

// POSHValue returns the probability of severe hail (%) for one SHI value,
// limited to [0, 100]. A non-positive SHI/WT ratio yields 0; missing SHI stays missing.
func POSHValue(shi, wt float64) float64 {
	if math.IsNaN(shi) {
		return math.NaN()
	}
	return clamp(29*radar.SafeLog(shi/wt)+50, 0, 100)
}

// POSH converts an SHI grid to probability of severe hail (%).
func POSH(shi domain.Grid, meltHeight float64) domain.Grid {
	wt := WarningThreshold(meltHeight)
	out := domain.NewGrid(shi.Azimuths, shi.Ranges)
	for k, v := range shi.Data {
		out.Data[k] = POSHValue(v, wt)
	}
	return out
}
