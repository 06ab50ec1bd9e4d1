// Package spatialindex tags coordinates with fixed-resolution hexagonal
// cell identifiers. Every pipeline stage uses the same resolution so cell
// ids are directly comparable across the signal, trajectory and node tables.
package spatialindex

import (
	"math"

	h3 "github.com/uber/h3-go/v4"
)

// Resolution is the single H3 resolution used across the whole dataset.
// Level 12 cells average ~307 m², fine enough to separate adjacent road
// segments.
const Resolution = 12

// MissingCell is stored when a coordinate is absent or NaN. Upstream eVED
// rows legitimately lack matched coordinates, so this is a data value, not
// an error.
const MissingCell int64 = 0

// CellID returns the H3 cell id for a degree-valued coordinate at
// Resolution. NaN or out-of-domain input yields MissingCell.
func CellID(lat, lon float64) int64 {
	return CellIDAt(lat, lon, Resolution)
}

// CellIDAt is CellID at an explicit resolution.
func CellIDAt(lat, lon float64, resolution int) int64 {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return MissingCell
	}
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), resolution)
	if err != nil {
		return MissingCell
	}
	return int64(cell)
}

// EdgeLengthM reports the average edge length in meters of cells at the
// given resolution, for choosing query radii.
func EdgeLengthM(resolution int) float64 {
	length, err := h3.HexagonEdgeLengthAvgM(resolution)
	if err != nil {
		return 0
	}
	return length
}
