package geo

import (
	"math"

	"github.com/openvehiclelab/evedb/pkg/util"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func NewCoordinates(lat, lon []float64) []Coordinate {
	coords := make([]Coordinate, len(lat))
	for i := range lat {
		coords[i] = NewCoordinate(lat[i], lon[i])
	}
	return coords
}

const (
	earthRadiusM = 6371000.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// HaversineDistance returns the great-circle distance between two
// degree-valued coordinates in meters. Identical points yield exactly 0.
func HaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	if latOne == latTwo && longOne == longTwo {
		return 0
	}

	latOne = util.DegreeToRadians(latOne)
	longOne = util.DegreeToRadians(longOne)
	latTwo = util.DegreeToRadians(latTwo)
	longTwo = util.DegreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(math.Min(a, 1.0)))
	return earthRadiusM * c
}

// VecHaversineDistance computes element-wise haversine distances between two
// equal-length point sequences. Panics when the sequence lengths differ,
// since that is always a programming error on the caller's side.
func VecHaversineDistance(latOne, longOne, latTwo, longTwo []float64) []float64 {
	if len(latOne) != len(longOne) || len(latOne) != len(latTwo) || len(latOne) != len(longTwo) {
		panic("geo: mismatched coordinate sequence lengths")
	}
	dist := make([]float64, len(latOne))
	for i := range latOne {
		dist[i] = HaversineDistance(latOne[i], longOne[i], latTwo[i], longTwo[i])
	}
	return dist
}

// PathLength sums consecutive-point haversine distances over coords.
// Zero or one point yields 0.
func PathLength(coords []Coordinate) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += HaversineDistance(coords[i-1].Lat, coords[i-1].Lon, coords[i].Lat, coords[i].Lon)
	}
	return total
}
