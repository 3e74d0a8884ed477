// Package domain models weather-radar volumes and the hail products derived
// from them.
//
// # Radar Volume Conventions
//
// A volume is a set of plan-position-indicator (PPI) sweeps, one per fixed
// antenna elevation. Each sweep carries its own azimuth and range vectors and a
// reflectivity array laid out row-major as (azimuth, range):
//
//	Reflectivity.At(i, j) = reflectivity at Azimuths[i], Ranges[j]
//
// Units:
//
//	Elevation, azimuth: degrees (azimuth clockwise from north)
//	Range:              meters along the beam
//	Reflectivity:       dBZ; NaN marks a missing gate
//	Radar altitude:     meters above mean sea level (AMSL)
//	Levels:             meters AMSL
//
// Sweeps need not share a grid. Upper sweeps are matched to the lowest sweep's
// ground footprint by horizontal nearest neighbour, so only the lowest sweep's
// geometry is used for the integrated products.
//
// # Temperature Levels
//
// Levels holds the freezing level and the -20 °C level. Callers may supply them
// in either order: the lower height is always the melt layer and the higher is
// always the -20 °C layer. See [Levels.Melt] and [Levels.Minus20].
//
// # Products
//
// A retrieval produces four fields (see [Products]):
//
//	Hail kinetic energy  Jm-2s-1  one grid per sweep
//	SHI                  Jm-1s-1  lowest-sweep geometry
//	MESH                 mm       lowest-sweep geometry
//	POSH                 %        lowest-sweep geometry
//
// Missing cells are NaN in memory and null in JSON.
//
// # Product IDs
//
// Product IDs are deterministic SHA-256 hashes of site|computed_at|method, so
// republishing the same retrieval produces the same ID. See [ProductID].
package domain
