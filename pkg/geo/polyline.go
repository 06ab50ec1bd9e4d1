package geo

import (
	gopolyline "github.com/twpayne/go-polyline"
)

// PolylineFromCoords encodes coords as a precision-5 polyline string for
// API responses and fixtures.
func PolylineFromCoords(coords []Coordinate) string {
	buf := make([][]float64, len(coords))
	for i, c := range coords {
		buf[i] = []float64{c.Lat, c.Lon}
	}
	return string(gopolyline.EncodeCoords(buf))
}
