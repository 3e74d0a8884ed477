// Command genmock writes a synthetic convective volume for exercising the hail
// retrieval. The storm is a single Gaussian reflectivity core whose intensity
// decays above the echo top, sampled on a VCP 12 style elevation list.
// When -levels is given the volume is also run through the retrieval and the
// product statistics are printed for updating test assertions.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/volume.json \
//	  -sweeps 14 -azimuths 360 -bins 480 \
//	  -levels 3500,6500
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
	"github.com/couchcryptid/storm-data-hail/internal/hail"
	"github.com/couchcryptid/storm-data-hail/internal/radar"
	"github.com/jonboulle/clockwork"
)

// vcp12 lists the elevation angles (degrees) of a WSR-88D VCP 12 volume.
var vcp12 = []float64{0.5, 0.9, 1.3, 1.8, 2.4, 3.1, 4.0, 5.1, 6.4, 8.0, 10.0, 12.5, 15.6, 19.5}

// storm describes the synthetic reflectivity core.
type storm struct {
	azimuth  float64 // degrees
	rng      float64 // meters
	peak     float64 // dBZ above background
	radius   float64 // meters, Gaussian sigma
	echoTop  float64 // meters AMSL where decay starts
	decay    float64 // meters, Gaussian sigma above echoTop
	baseline float64 // dBZ
}

var defaultStorm = storm{
	azimuth:  45,
	rng:      40000,
	peak:     48,
	radius:   6000,
	echoTop:  8000,
	decay:    3000,
	baseline: 15,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for volume JSON fixture")
	sweeps := flag.Int("sweeps", len(vcp12), "number of sweeps (at most 14)")
	azimuths := flag.Int("azimuths", 360, "rays per sweep")
	bins := flag.Int("bins", 480, "gates per ray")
	gate := flag.Float64("gate", 250, "gate spacing in meters")
	altitude := flag.Float64("altitude", 370, "radar altitude in meters AMSL")
	seed := flag.Uint64("seed", 1, "noise seed")
	levels := flag.String("levels", "", "optional freezing level and -20C level for printing product stats")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *sweeps < hail.MinSweeps || *sweeps > len(vcp12) {
		return fmt.Errorf("-sweeps must be between %d and %d", hail.MinSweeps, len(vcp12))
	}
	if *azimuths < 1 || *bins < 1 || *gate <= 0 {
		return fmt.Errorf("-azimuths, -bins and -gate must be positive")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	vol := generate(defaultStorm, vcp12[:*sweeps], *azimuths, *bins, *gate, *altitude, rng)

	if err := writeJSON(*out, vol); err != nil {
		return fmt.Errorf("writing volume fixture: %w", err)
	}
	log.Printf("wrote volume fixture: %s (%d sweeps, %dx%d gates)", *out, len(vol.Sweeps), *azimuths, *bins)

	if *levels == "" {
		return nil
	}
	return printStats(vol, *levels)
}

func generate(s storm, elevations []float64, nAz, nRg int, gate, altitude float64, rng *rand.Rand) domain.Volume {
	az := make([]float64, nAz)
	step := 360.0 / float64(nAz)
	for i := range az {
		az[i] = (float64(i) + 0.5) * step
	}
	ranges := make([]float64, nRg)
	for j := range ranges {
		ranges[j] = (float64(j) + 0.5) * gate
	}

	cx, cy, _ := radar.ToCartesian(s.rng, s.azimuth, 0)

	vol := domain.Volume{
		Site:          &domain.Site{ID: "MOCK", Lat: 35.33, Lon: -97.28},
		RadarAltitude: altitude,
		Sweeps:        make([]domain.Sweep, len(elevations)),
	}
	for k, elev := range elevations {
		refl := domain.NewGrid(nAz, nRg)
		for i, a := range az {
			row := refl.Row(i)
			for j, r := range ranges {
				x, y, z := radar.ToCartesian(r, a, elev)
				row[j] = s.reflectivity(x-cx, y-cy, z+altitude) + rng.NormFloat64()*1.5
			}
		}
		vol.Sweeps[k] = domain.Sweep{
			Elevation:    elev,
			Azimuths:     az,
			Ranges:       ranges,
			Reflectivity: refl,
		}
	}
	return vol
}

// reflectivity returns the storm's dBZ at horizontal offset (dx, dy) from the
// core and height h.
func (s storm) reflectivity(dx, dy, h float64) float64 {
	horizontal := math.Exp(-(dx*dx + dy*dy) / (2 * s.radius * s.radius))
	vertical := 1.0
	if h > s.echoTop {
		d := h - s.echoTop
		vertical = math.Exp(-d * d / (2 * s.decay * s.decay))
	}
	return s.baseline + s.peak*horizontal*vertical
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(vol domain.Volume, levels string) error {
	values := make([]float64, 0, 2)
	for _, p := range strings.Split(levels, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("parse -levels %q: %w", levels, err)
		}
		values = append(values, v)
	}
	lv, err := domain.NewLevels(values)
	if err != nil {
		return err
	}

	// Set a fixed clock for reproducible product IDs.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("\n=== Stats for updating test assertions ===")
	for _, m := range domain.MeshMethods {
		opts := hail.DefaultOptions()
		opts.Levels = lv
		opts.Method = m
		products, err := hail.Compute(vol, opts)
		if err != nil {
			return fmt.Errorf("compute %s: %w", m, err)
		}
		products.ComputedAt = domain.Now()
		summary := domain.NewProductSummary(vol.Site, products)
		fmt.Printf("%-10s id=%s valid=%d maxSHI=%.2f maxMESH=%.2f mm maxPOSH=%.1f%%\n",
			m, summary.ID, summary.Summary.ValidCells,
			summary.Summary.MaxSHI, summary.Summary.MaxMESH, summary.Summary.MaxPOSH)
	}
	return nil
}
