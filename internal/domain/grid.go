package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Grid is a dense row-major (azimuth, range) array.
type Grid struct {
	Azimuths int
	Ranges   int
	Data     []float64
}

// NewGrid allocates a zeroed grid.
func NewGrid(azimuths, ranges int) Grid {
	return Grid{Azimuths: azimuths, Ranges: ranges, Data: make([]float64, azimuths*ranges)}
}

// NewGridFilled allocates a grid with every cell set to v.
func NewGridFilled(azimuths, ranges int, v float64) Grid {
	g := NewGrid(azimuths, ranges)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

// GridFromRows builds a grid from a slice of rows. All rows must have equal length.
func GridFromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	g := NewGrid(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != g.Ranges {
			return Grid{}, fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), g.Ranges, ErrInvalidArgument)
		}
		copy(g.Row(i), row)
	}
	return g, nil
}

func (g Grid) Len() int { return len(g.Data) }

// Index returns the flat offset of cell (i, j).
func (g Grid) Index(i, j int) int { return i*g.Ranges + j }

func (g Grid) At(i, j int) float64 { return g.Data[i*g.Ranges+j] }

func (g Grid) Set(i, j int, v float64) { g.Data[i*g.Ranges+j] = v }

// Row returns the backing slice of ray i.
func (g Grid) Row(i int) []float64 { return g.Data[i*g.Ranges : (i+1)*g.Ranges] }

// SameShape reports whether o has the same dimensions as g.
func (g Grid) SameShape(o Grid) bool {
	return g.Azimuths == o.Azimuths && g.Ranges == o.Ranges
}

// Valid reports whether the backing slice matches the declared dimensions.
func (g Grid) Valid() bool {
	return g.Azimuths >= 0 && g.Ranges >= 0 && len(g.Data) == g.Azimuths*g.Ranges
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := Grid{Azimuths: g.Azimuths, Ranges: g.Ranges, Data: make([]float64, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}

// Rows returns the grid as nested slices sharing the backing array.
func (g Grid) Rows() [][]float64 {
	rows := make([][]float64, g.Azimuths)
	for i := range rows {
		rows[i] = g.Row(i)
	}
	return rows
}

// MarshalJSON encodes the grid as nested rows. NaN and ±Inf become null since
// JSON has no representation for them.
func (g Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]*float64, g.Azimuths)
	for i := range rows {
		src := g.Row(i)
		row := make([]*float64, len(src))
		for j := range src {
			v := src[j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			row[j] = &v
		}
		rows[i] = row
	}
	return json.Marshal(rows)
}

// UnmarshalJSON decodes nested rows; null cells become NaN.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]*float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		*g = Grid{}
		return nil
	}
	out := NewGrid(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != out.Ranges {
			return fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), out.Ranges, ErrInvalidArgument)
		}
		dst := out.Row(i)
		for j, v := range row {
			if v == nil {
				dst[j] = math.NaN()
				continue
			}
			dst[j] = *v
		}
	}
	*g = out
	return nil
}
