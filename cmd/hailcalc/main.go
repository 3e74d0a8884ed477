// Command hailcalc runs a single hail retrieval over a volume JSON file and
// writes the SHI, MESH and POSH products as JSON.
//
// Usage:
//
//	go run ./cmd/hailcalc \
//	  -in data/mock/volume.json \
//	  -out products.json \
//	  -levels 3500,6500 \
//	  -band S \
//	  -method mh2019_75
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
	"github.com/couchcryptid/storm-data-hail/internal/hail"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("hailcalc", flag.ContinueOnError)
	in := fs.String("in", "", "path to input volume JSON")
	out := fs.String("out", "", "path to output products JSON (stdout when empty)")
	band := fs.String("band", string(domain.BandS), "radar band: S or C")
	levels := fs.String("levels", "", "freezing level and -20C level in meters AMSL, comma separated")
	method := fs.String("method", string(hail.DefaultMethod), "MESH calibration: witt1998, mh2019_75 or mh2019_95")
	minRange := fs.Float64("min-range", hail.DefaultMinRangeKm, "minimum ground range of valid cells in km")
	maxRange := fs.Float64("max-range", hail.DefaultMaxRangeKm, "maximum ground range of valid cells in km")
	noCorrection := fs.Bool("no-cband-correction", false, "skip the C-band reflectivity correction")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" || *levels == "" {
		fs.Usage()
		return fmt.Errorf("missing required flags: -in, -levels")
	}

	lv, err := parseLevels(*levels)
	if err != nil {
		return err
	}

	vol, err := readVolume(*in)
	if err != nil {
		return err
	}

	opts := hail.DefaultOptions()
	opts.Band = domain.RadarBand(strings.ToUpper(*band))
	opts.Levels = lv
	opts.Method = domain.MeshMethod(*method)
	opts.MinRangeKm = *minRange
	opts.MaxRangeKm = *maxRange
	opts.CorrectCBand = !*noCorrection

	start := domain.Now()
	products, err := hail.Compute(vol, opts)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}
	products.ComputedAt = domain.Now().UTC()
	products.ProcessingSeconds = domain.Since(start).Seconds()

	for _, adv := range products.Advisories {
		log.Printf("warning: %s", adv.Message)
	}
	log.Printf("sweeps: %d, valid cells: %d, max SHI: %.1f, max MESH: %.1f mm, max POSH: %.0f%%",
		products.Summary.SweepCount, products.Summary.ValidCells,
		products.Summary.MaxSHI, products.Summary.MaxMESH, products.Summary.MaxPOSH)

	return writeJSON(*out, products)
}

func parseLevels(s string) (*domain.Levels, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse -levels %q: %w", s, err)
		}
		values = append(values, v)
	}
	return domain.NewLevels(values)
}

func readVolume(path string) (domain.Volume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Volume{}, fmt.Errorf("read volume: %w", err)
	}
	var vol domain.Volume
	if err := json.Unmarshal(data, &vol); err != nil {
		return domain.Volume{}, fmt.Errorf("decode volume %s: %w", path, err)
	}
	return vol, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}
	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write products: %w", err)
	}
	log.Printf("wrote products: %s", path)
	return nil
}
