package hail

import (
	"math"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
	"gonum.org/v1/gonum/floats"
)

const (
	wittReference  = "developed by Witt et al. 1998 doi:10.1175/1520-0434(1998)013<0286:AEHDAF>2.0.CO;2 "
	mhReference    = "originally developed by Witt et al. 1998 doi:10.1175/1520-0434(1998)013<0286:AEHDAF>2.0.CO;2 and recalibrated by Murillo and Homeyer (2021) doi:10.1175/JAMC-D-20-0271.1 "
	cbandReference = "C band hail reflectivity correction applied from Brook et al. 2023 https://arxiv.org/abs/2306.12016"
	lowestOnly     = "only valid in the first sweep"
)

var meshComments = map[domain.MeshMethod]string{
	domain.MeshWitt1998:  "75th percentile fit using 147 hail reports; " + lowestOnly,
	domain.MeshMH2019P75: "75th percentile fit using 5897 hail reports; " + lowestOnly,
	domain.MeshMH2019P95: "95th percentile fit using 5897 hail reports; " + lowestOnly,
}

// pack assembles the four output fields. No values are transformed.
func pack(in *Input, sweeps []sweepFields, shi, mesh, posh domain.Grid) *domain.Products {
	var correction string
	if in.bandCorrected() {
		correction = cbandReference
	}

	ke := make([]domain.Grid, len(sweeps))
	elevations := make([]float64, len(sweeps))
	for i, s := range sweeps {
		ke[i] = s.ke
		elevations[i] = s.sweep.Elevation
	}

	meshDescription := "Maximum Estimated Size of Hail retrieval " + mhReference
	if in.Method == domain.MeshWitt1998 {
		meshDescription = "Maximum Estimated Size of Hail retrieval " + wittReference
	}

	return &domain.Products{
		KineticEnergy: domain.SweepField{
			Units:       "Jm-2s-1",
			LongName:    "Hail Kinetic Energy",
			Description: "Hail Kinetic Energy " + wittReference + correction,
			Data:        ke,
		},
		SHI: domain.Field{
			Units:       "Jm-1s-1",
			LongName:    "Severe Hail Index",
			Description: "Severe Hail Index " + wittReference + correction,
			Comments:    lowestOnly,
			Data:        shi,
		},
		MESH: domain.Field{
			Units:       "mm",
			LongName:    "Maximum Expected Size of Hail using " + string(in.Method),
			Description: meshDescription + correction,
			Comments:    meshComments[in.Method],
			Data:        mesh,
		},
		POSH: domain.Field{
			Units:       "%",
			LongName:    "Probability of Severe Hail",
			Description: "Probability of Severe Hail " + wittReference + correction,
			Comments:    lowestOnly,
			Data:        posh,
		},
		Method:        in.Method,
		Band:          in.Band,
		BandCorrected: in.bandCorrected(),
		Elevations:    elevations,
	}
}

// summarize reduces the product grids to scalar statistics over finite cells.
func summarize(sweepCount int, shi, mesh, posh domain.Grid) domain.Summary {
	s := domain.Summary{SweepCount: sweepCount}
	finiteSHI := finite(shi.Data)
	s.ValidCells = len(finiteSHI)
	if s.ValidCells == 0 {
		return s
	}
	s.MaxSHI = floats.Max(finiteSHI)
	s.MaxMESH = floats.Max(finite(mesh.Data))
	s.MaxPOSH = floats.Max(finite(posh.Data))
	return s
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
