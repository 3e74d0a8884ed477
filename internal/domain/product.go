package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Field is one packaged output grid with its CF-style metadata.
type Field struct {
	Units       string `json:"units"`
	LongName    string `json:"long_name"`
	Description string `json:"description"`
	Comments    string `json:"comments,omitempty"`
	Data        Grid   `json:"data"`
}

// SweepField is a field with one grid per sweep, in ascending elevation order.
type SweepField struct {
	Units       string `json:"units"`
	LongName    string `json:"long_name"`
	Description string `json:"description"`
	Comments    string `json:"comments,omitempty"`
	Data        []Grid `json:"data"`
}

// Summary holds scalar statistics over the finite cells of the products.
type Summary struct {
	SweepCount int     `json:"sweep_count"`
	ValidCells int     `json:"valid_cells"`
	MaxSHI     float64 `json:"max_shi"`
	MaxMESH    float64 `json:"max_mesh"`
	MaxPOSH    float64 `json:"max_posh"`
}

// Products is the result of one hail retrieval.
type Products struct {
	KineticEnergy SweepField `json:"hail_ke"`
	SHI           Field      `json:"shi"`
	MESH          Field      `json:"mesh"`
	POSH          Field      `json:"posh"`

	Method            MeshMethod `json:"mesh_method"`
	Band              RadarBand  `json:"radar_band"`
	BandCorrected     bool       `json:"band_corrected"`
	Elevations        []float64  `json:"elevations"`
	Summary           Summary    `json:"summary"`
	Advisories        []Advisory `json:"advisories,omitempty"`
	ComputedAt        time.Time  `json:"computed_at"`
	ProcessingSeconds float64    `json:"processing_seconds"`
}

// ProductSummary is the compact record published downstream for each retrieval.
// It deliberately omits the grids.
type ProductSummary struct {
	ID         string     `json:"id"`
	SiteID     string     `json:"site_id,omitempty"`
	Lat        float64    `json:"lat,omitempty"`
	Lon        float64    `json:"lon,omitempty"`
	Method     MeshMethod `json:"mesh_method"`
	Band       RadarBand  `json:"radar_band"`
	Summary    Summary    `json:"summary"`
	Advisories []Advisory `json:"advisories,omitempty"`
	ComputedAt time.Time  `json:"computed_at"`
}

// NewProductSummary condenses products computed for site (which may be nil).
func NewProductSummary(site *Site, p *Products) ProductSummary {
	s := ProductSummary{
		Method:     p.Method,
		Band:       p.Band,
		Summary:    p.Summary,
		Advisories: p.Advisories,
		ComputedAt: p.ComputedAt,
	}
	if site != nil {
		s.SiteID = site.ID
		s.Lat = site.Lat
		s.Lon = site.Lon
	}
	s.ID = ProductID(s.SiteID, s.ComputedAt, s.Method)
	return s
}

// ProductID produces a deterministic ID from the retrieval's key fields.
func ProductID(siteID string, computedAt time.Time, method MeshMethod) string {
	key := fmt.Sprintf("%s|%s|%s", siteID, computedAt.UTC().Format(time.RFC3339Nano), method)
	sum := sha256.Sum256([]byte(key))
	return "hail-" + hex.EncodeToString(sum[:8])
}
