package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// RadarBand is the radar's frequency band.
type RadarBand string

const (
	BandS RadarBand = "S"
	BandC RadarBand = "C"
)

// Valid reports whether b is a supported band.
func (b RadarBand) Valid() bool {
	return b == BandS || b == BandC
}

// MeshMethod selects the empirical SHI→MESH calibration.
type MeshMethod string

const (
	// MeshWitt1998 is the 75th percentile fit from Witt et al. 1998 (147 reports).
	MeshWitt1998 MeshMethod = "witt1998"
	// MeshMH2019P75 is the 75th percentile fit from Murillo and Homeyer (5897 reports).
	MeshMH2019P75 MeshMethod = "mh2019_75"
	// MeshMH2019P95 is the 95th percentile fit from Murillo and Homeyer (5897 reports).
	MeshMH2019P95 MeshMethod = "mh2019_95"
)

// MeshMethods lists every supported calibration.
var MeshMethods = []MeshMethod{MeshWitt1998, MeshMH2019P75, MeshMH2019P95}

// Valid reports whether m is a supported calibration.
func (m MeshMethod) Valid() bool {
	switch m {
	case MeshWitt1998, MeshMH2019P75, MeshMH2019P95:
		return true
	}
	return false
}

// Sweep is one PPI scan at a fixed elevation angle.
type Sweep struct {
	Elevation    float64   `json:"elevation"`
	Azimuths     []float64 `json:"azimuths"`
	Ranges       []float64 `json:"ranges"`
	Reflectivity Grid      `json:"reflectivity"`
}

// Validate checks that the reflectivity grid matches the azimuth and range vectors.
func (s Sweep) Validate() error {
	if len(s.Azimuths) == 0 || len(s.Ranges) == 0 {
		return fmt.Errorf("sweep at %.2f°: empty azimuth or range vector: %w", s.Elevation, ErrInvalidArgument)
	}
	if !s.Reflectivity.Valid() ||
		s.Reflectivity.Azimuths != len(s.Azimuths) ||
		s.Reflectivity.Ranges != len(s.Ranges) {
		return fmt.Errorf("sweep at %.2f°: reflectivity shape %dx%d does not match %d azimuths x %d ranges: %w",
			s.Elevation, s.Reflectivity.Azimuths, s.Reflectivity.Ranges, len(s.Azimuths), len(s.Ranges), ErrInvalidArgument)
	}
	if math.IsNaN(s.Elevation) || math.IsInf(s.Elevation, 0) {
		return fmt.Errorf("sweep elevation is not finite: %w", ErrInvalidArgument)
	}
	return nil
}

// Site identifies the radar. It is optional and only echoed into product summaries.
type Site struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// Volume is the set of sweeps a single retrieval runs over.
type Volume struct {
	Site          *Site   `json:"site,omitempty"`
	RadarAltitude float64 `json:"radar_altitude"`
	Sweeps        []Sweep `json:"sweeps"`
}

// Levels holds the freezing level and the -20 °C level in meters AMSL, in any order.
type Levels struct {
	FreezingLevel float64
	Minus20Level  float64
}

// NewLevels builds Levels from a two-element list.
func NewLevels(values []float64) (*Levels, error) {
	if values == nil {
		return nil, fmt.Errorf("missing levels for freezing level and -20C level: %w", ErrInvalidArgument)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("levels must have 2 values, got %d: %w", len(values), ErrInvalidArgument)
	}
	return &Levels{FreezingLevel: values[0], Minus20Level: values[1]}, nil
}

// Melt returns the lower of the two heights.
func (l Levels) Melt() float64 { return math.Min(l.FreezingLevel, l.Minus20Level) }

// Minus20 returns the higher of the two heights.
func (l Levels) Minus20() float64 { return math.Max(l.FreezingLevel, l.Minus20Level) }

func (l Levels) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{l.FreezingLevel, l.Minus20Level})
}

func (l *Levels) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	parsed, err := NewLevels(values)
	if err != nil {
		return err
	}
	*l = *parsed
	return nil
}
