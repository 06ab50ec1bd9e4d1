// Package polyline decodes the delta + zig-zag + 5-bit chunked coordinate
// encoding emitted by the map-matching oracle.
//
// The encoded stream carries one latitude group followed by one longitude
// group per point; decoded points are emitted in (lon, lat) order, matching
// what the oracle's own utilities return. Callers must read decoded points
// through the named fields, never by position.
package polyline

import (
	"errors"

	"github.com/openvehiclelab/evedb/pkg/util"
)

// Point is one decoded coordinate. Lon first, per the oracle convention.
type Point struct {
	Lon float64
	Lat float64
}

// Codec decodes polylines at a fixed coordinate scale.
type Codec struct {
	// Scale divides the accumulated integer deltas, e.g. 1e6 for the
	// oracle's six-digit encoding, 1e5 for the classic five-digit one.
	Scale float64
}

var (
	// Valhalla is the pipeline codec: six decimal digits.
	Valhalla = Codec{Scale: 1e6}
	// Precision5 matches the widespread five-digit encoding.
	Precision5 = Codec{Scale: 1e5}
)

// ErrTruncated reports an encoded string ending inside a chunk group.
var ErrTruncated = errors.New("polyline: truncated encoding")

const (
	chunkBits        = 5
	chunkMask        = 0x1f
	continuationFlag = 0x20
	asciiOffset      = 63
)

// digits is the number of decimals kept per decoded coordinate, derived
// from the codec scale (6 for Valhalla, 5 for Precision5).
func (c Codec) digits() uint {
	switch c.Scale {
	case 1e5:
		return 5
	default:
		return 6
	}
}

// Decode converts an encoded string into its ordered point sequence.
// Pure function: no state is shared across calls, so decoding the same
// string is freely restartable.
func (c Codec) Decode(encoded string) ([]Point, error) {
	var (
		points   []Point
		previous [2]int64 // running absolute values, [lat, lon]
		i        int
	)
	digits := c.digits()
	for i < len(encoded) {
		var ll [2]int64
		for j := 0; j < 2; j++ {
			var (
				value int64
				shift uint
			)
			for {
				if i >= len(encoded) {
					return nil, ErrTruncated
				}
				b := int64(encoded[i]) - asciiOffset
				i++
				value |= (b & chunkMask) << shift
				shift += chunkBits
				if b < continuationFlag {
					break
				}
			}
			// zig-zag: odd magnitudes are one's-complement negatives.
			if value&1 != 0 {
				value = ^(value >> 1)
			} else {
				value >>= 1
			}
			ll[j] = previous[j] + value
			previous[j] = ll[j]
		}
		points = append(points, Point{
			Lon: util.RoundFloat(float64(ll[1])/c.Scale, digits),
			Lat: util.RoundFloat(float64(ll[0])/c.Scale, digits),
		})
	}
	return points, nil
}

// Decode decodes with the pipeline's six-digit codec.
func Decode(encoded string) ([]Point, error) {
	return Valhalla.Decode(encoded)
}
