package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistanceCoincidentPoints(t *testing.T) {
	assert.Equal(t, 0.0, HaversineDistance(0, 0, 0, 0))
	assert.Equal(t, 0.0, HaversineDistance(42.2808, -83.7430, 42.2808, -83.7430))
}

func TestHaversineDistanceOneDegreeLongitudeAtEquator(t *testing.T) {
	d := HaversineDistance(0, 0, 0, 1)
	assert.InDelta(t, 111195.0, d, 50.0)
}

func TestHaversineDistanceSymmetry(t *testing.T) {
	a := HaversineDistance(42.2808, -83.7430, 42.3314, -83.0458)
	b := HaversineDistance(42.3314, -83.0458, 42.2808, -83.7430)
	assert.Equal(t, a, b)
}

func TestHaversineDistanceAntipodal(t *testing.T) {
	// Half the Earth's circumference at the mean radius.
	d := HaversineDistance(0, 0, 0, 180)
	assert.InDelta(t, 20015086.0, d, 1000.0)
}

func TestVecHaversineDistance(t *testing.T) {
	lat1 := []float64{0, 0, 42.2808}
	lon1 := []float64{0, 0, -83.7430}
	lat2 := []float64{0, 0, 42.2808}
	lon2 := []float64{0, 1, -83.7430}

	dist := VecHaversineDistance(lat1, lon1, lat2, lon2)
	require.Len(t, dist, 3)
	assert.Equal(t, 0.0, dist[0])
	assert.InDelta(t, 111195.0, dist[1], 50.0)
	assert.Equal(t, 0.0, dist[2])
}

func TestVecHaversineDistanceMismatchedLengths(t *testing.T) {
	assert.Panics(t, func() {
		VecHaversineDistance([]float64{0, 1}, []float64{0}, []float64{0}, []float64{0})
	})
}

func TestPathLengthDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, PathLength(nil))
	assert.Equal(t, 0.0, PathLength([]Coordinate{NewCoordinate(42.28, -83.74)}))
}

func TestPathLengthCollinearEquallySpaced(t *testing.T) {
	// Five points on the equator, 0.01 degrees apart.
	coords := make([]Coordinate, 5)
	for i := range coords {
		coords[i] = NewCoordinate(0, float64(i)*0.01)
	}
	segment := HaversineDistance(0, 0, 0, 0.01)
	assert.InDelta(t, 4*segment, PathLength(coords), 1e-6)
}
