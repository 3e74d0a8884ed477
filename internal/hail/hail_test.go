package hail

import (
	"math"
	"slices"
	"testing"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
	"github.com/couchcryptid/storm-data-hail/internal/radar"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allNaN(t *testing.T, g domain.Grid, name string) {
	t.Helper()
	for k, v := range g.Data {
		assert.True(t, math.IsNaN(v), "%s[%d] = %v, want NaN", name, k, v)
	}
}

func TestCompute_TwoSweepsNearRadar(t *testing.T) {
	vol := domain.Volume{
		RadarAltitude: 0,
		Sweeps: []domain.Sweep{
			uniformSweep(0.5, []float64{0, 90}, []float64{1000, 2000}, 55),
			uniformSweep(1.5, []float64{0, 90}, []float64{1000, 2000}, 55),
		},
	}

	p, err := Compute(vol, testOptions())
	require.NoError(t, err)

	wantKE := 5e-6 * math.Pow(10, 0.084*55)
	require.Len(t, p.KineticEnergy.Data, 2)
	for _, ke := range p.KineticEnergy.Data {
		for _, v := range ke.Data {
			assert.InEpsilon(t, wantKE, v, 1e-12)
		}
	}

	// Every gate is inside 10 km ground range, so nothing is valid.
	allNaN(t, p.SHI.Data, "shi")
	allNaN(t, p.MESH.Data, "mesh")
	allNaN(t, p.POSH.Data, "posh")
	assert.Equal(t, 2, p.SHI.Data.Azimuths)
	assert.Equal(t, 2, p.SHI.Data.Ranges)
	assert.Zero(t, p.Summary.ValidCells)

	require.Len(t, p.Advisories, 1)
	assert.Equal(t, domain.AdvisorySweepCountLow, p.Advisories[0].Code)
}

func TestCompute_TwoSweepsInWindow(t *testing.T) {
	az := []float64{0, 90}
	rg := []float64{20000, 25000}
	vol := domain.Volume{Sweeps: []domain.Sweep{
		uniformSweep(10, az, rg, 55),
		uniformSweep(12, az, rg, 55),
	}}

	p, err := Compute(vol, testOptions())
	require.NoError(t, err)

	ke := KineticEnergy(55)
	for i, a := range az {
		for j, r := range rg {
			_, _, z0 := radar.ToCartesian(r, a, 10)
			_, _, z1 := radar.ToCartesian(r, a, 12)
			dz := z1 - z0
			wantSHI := 0.1 * (TemperatureWeight(z0, 3000, 5000)*ke*dz + TemperatureWeight(z1, 3000, 5000)*ke*dz)

			shi := p.SHI.Data.At(i, j)
			require.False(t, math.IsNaN(shi), "cell (%d,%d)", i, j)
			assert.Greater(t, shi, 0.0)
			assert.InEpsilon(t, wantSHI, shi, 1e-9)
			assert.InEpsilon(t, 15.096*math.Pow(wantSHI, 0.206), p.MESH.Data.At(i, j), 1e-9)
			assert.InDelta(t, clamp(29*math.Log(wantSHI/51.5)+50, 0, 100), p.POSH.Data.At(i, j), 1e-6)
		}
	}
	assert.Equal(t, 4, p.Summary.ValidCells)
	assert.Equal(t, 2, p.Summary.SweepCount)
	assert.Greater(t, p.Summary.MaxMESH, 0.0)
}

func TestCompute_OutsideRangeWindowIsMissing(t *testing.T) {
	az := []float64{0, 90}
	rg := []float64{20000, 160000}
	vol := domain.Volume{Sweeps: []domain.Sweep{
		uniformSweep(10, az, rg, 55),
		uniformSweep(12, az, rg, 55),
	}}

	p, err := Compute(vol, testOptions())
	require.NoError(t, err)

	for i := range az {
		assert.False(t, math.IsNaN(p.SHI.Data.At(i, 0)))
		assert.True(t, math.IsNaN(p.SHI.Data.At(i, 1)))
		assert.True(t, math.IsNaN(p.MESH.Data.At(i, 1)))
		assert.True(t, math.IsNaN(p.POSH.Data.At(i, 1)))
	}
}

func TestCompute_SHIPositiveOrMissing(t *testing.T) {
	vol := stormVolume(0.5, 1.5, 3, 5, 8, 10, 13, 16, 20, 25)
	// A reflectivity core that fades with range.
	for s := range vol.Sweeps {
		refl := vol.Sweeps[s].Reflectivity
		for i := range refl.Azimuths {
			for j := range refl.Ranges {
				refl.Set(i, j, 65-float64(i*4+j*3+s))
			}
		}
	}

	p, err := Compute(vol, testOptions())
	require.NoError(t, err)
	assert.Empty(t, p.Advisories)

	for _, v := range p.SHI.Data.Data {
		if !math.IsNaN(v) {
			assert.Greater(t, v, 0.0)
		}
	}
	for _, v := range p.POSH.Data.Data {
		if !math.IsNaN(v) {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	}
}

func TestCompute_LevelOrderIndependent(t *testing.T) {
	vol := stormVolume(8, 10, 12, 14)

	a := testOptions()
	a.Levels = levels(3000, 5000)
	b := testOptions()
	b.Levels = levels(5000, 3000)

	pa, err := Compute(vol, a)
	require.NoError(t, err)
	pb, err := Compute(vol, b)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(pa, pb, cmpopts.EquateNaNs()))
}

func TestCompute_SweepOrderIndependent(t *testing.T) {
	sorted := stormVolume(8, 10, 12, 14)
	for s := range sorted.Sweeps {
		sorted.Sweeps[s].Reflectivity.Data[s] = 60 + float64(s)
	}

	shuffled := sorted
	shuffled.Sweeps = []domain.Sweep{sorted.Sweeps[2], sorted.Sweeps[0], sorted.Sweeps[3], sorted.Sweeps[1]}

	ps, err := Compute(sorted, testOptions())
	require.NoError(t, err)
	pu, err := Compute(shuffled, testOptions())
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(ps, pu, cmpopts.EquateNaNs()))
	assert.Equal(t, []float64{8, 10, 12, 14}, pu.Elevations)
}

func TestCompute_WorkerCountDoesNotChangeResult(t *testing.T) {
	vol := stormVolume(8, 10, 12)

	one := testOptions()
	one.Workers = 1
	many := testOptions()
	many.Workers = 16

	p1, err := Compute(vol, one)
	require.NoError(t, err)
	p2, err := Compute(vol, many)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(p1, p2, cmpopts.EquateNaNs()))
}

func TestCompute_BandCorrection(t *testing.T) {
	az := []float64{0, 90}
	rg := []float64{20000, 25000}
	vol := domain.Volume{Sweeps: []domain.Sweep{
		uniformSweep(10, az, rg, 50),
		uniformSweep(12, az, rg, 50),
	}}
	before := vol.Sweeps[0].Reflectivity.Clone()

	corrected := testOptions()
	corrected.Band = domain.BandC

	raw := testOptions()
	raw.Band = domain.BandC
	raw.CorrectCBand = false

	pc, err := Compute(vol, corrected)
	require.NoError(t, err)
	pr, err := Compute(vol, raw)
	require.NoError(t, err)

	assert.InEpsilon(t, KineticEnergy(51.721), pc.KineticEnergy.Data[0].Data[0], 1e-9)
	assert.InEpsilon(t, KineticEnergy(50), pr.KineticEnergy.Data[0].Data[0], 1e-12)
	assert.Greater(t, pc.SHI.Data.Data[0], pr.SHI.Data.Data[0])

	assert.True(t, pc.BandCorrected)
	assert.False(t, pr.BandCorrected)
	assert.Contains(t, pc.SHI.Description, "Brook et al. 2023")
	assert.NotContains(t, pr.SHI.Description, "Brook et al. 2023")

	assert.Equal(t, before.Data, vol.Sweeps[0].Reflectivity.Data, "caller reflectivity is not modified")
}

func TestCompute_SBandIgnoresCorrectionFlag(t *testing.T) {
	vol := stormVolume(10, 12)
	p, err := Compute(vol, testOptions())
	require.NoError(t, err)
	assert.False(t, p.BandCorrected)
	assert.InEpsilon(t, KineticEnergy(55), p.KineticEnergy.Data[0].Data[0], 1e-12)
}

func TestCompute_MeshMethods(t *testing.T) {
	vol := stormVolume(10, 12)
	for _, m := range domain.MeshMethods {
		t.Run(string(m), func(t *testing.T) {
			opts := testOptions()
			opts.Method = m
			p, err := Compute(vol, opts)
			require.NoError(t, err)

			want, err := MeshValue(p.SHI.Data.Data[0], m)
			require.NoError(t, err)
			assert.InDelta(t, want, p.MESH.Data.Data[0], 1e-12)
			assert.Equal(t, m, p.Method)
			assert.Contains(t, p.MESH.LongName, string(m))
			assert.Equal(t, meshComments[m], p.MESH.Comments)
		})
	}
}

func TestCompute_Metadata(t *testing.T) {
	p, err := Compute(stormVolume(10, 12), testOptions())
	require.NoError(t, err)

	assert.Equal(t, "Jm-2s-1", p.KineticEnergy.Units)
	assert.Equal(t, "Jm-1s-1", p.SHI.Units)
	assert.Equal(t, "mm", p.MESH.Units)
	assert.Equal(t, "%", p.POSH.Units)
	assert.Equal(t, "only valid in the first sweep", p.SHI.Comments)
	assert.Equal(t, "only valid in the first sweep", p.POSH.Comments)
	assert.Contains(t, p.MESH.Description, "Murillo and Homeyer")
}

func TestCompute_Errors(t *testing.T) {
	t.Run("single sweep", func(t *testing.T) {
		_, err := Compute(stormVolume(0.5), testOptions())
		require.ErrorIs(t, err, domain.ErrInsufficientSweeps)
	})

	t.Run("unknown method", func(t *testing.T) {
		opts := testOptions()
		opts.Method = "bogus"
		_, err := Compute(stormVolume(0.5, 1.5), opts)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestCompute_MixedSweepGrids(t *testing.T) {
	vol := domain.Volume{Sweeps: []domain.Sweep{
		uniformSweep(10, []float64{0, 90, 180, 270}, []float64{20000, 22500, 25000}, 55),
		uniformSweep(12, []float64{0, 120, 240}, []float64{20000, 25000}, 55),
		uniformSweep(14, []float64{0, 90, 180, 270}, []float64{21000, 23000, 25000}, 55),
	}}

	p, err := Compute(vol, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, p.SHI.Data.Azimuths)
	assert.Equal(t, 3, p.SHI.Data.Ranges)
	require.Len(t, p.KineticEnergy.Data, 3)
	assert.Equal(t, 3, p.KineticEnergy.Data[1].Azimuths)
	assert.Equal(t, 2, p.KineticEnergy.Data[1].Ranges)
	assert.False(t, slices.ContainsFunc(p.SHI.Data.Data, func(v float64) bool { return v <= 0 }))
}

func TestVerticalSpacing(t *testing.T) {
	in, err := Normalize(stormVolume(1, 2, 4), testOptions())
	require.NoError(t, err)
	sweeps := preprocess(in)

	z := func(s, k int) float64 { return sweeps[s].geom.z.Data[k] }
	for k := range sweeps[0].dz.Data {
		assert.InDelta(t, z(1, k)-z(0, k), sweeps[0].dz.Data[k], 1e-9)
		assert.InDelta(t, (z(2, k)-z(0, k))/2, sweeps[1].dz.Data[k], 1e-9)
		assert.InDelta(t, z(2, k)-z(1, k), sweeps[2].dz.Data[k], 1e-9)
	}
}

func TestPreprocess_RadarAltitude(t *testing.T) {
	vol := stormVolume(1, 2)
	vol.RadarAltitude = 450
	in, err := Normalize(vol, testOptions())
	require.NoError(t, err)
	sweeps := preprocess(in)

	_, _, z := radar.ToCartesian(20000, 0, 1)
	assert.InDelta(t, z+450, sweeps[0].geom.z.At(0, 0), 1e-9)
}
