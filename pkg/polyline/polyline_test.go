package polyline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gopolyline "github.com/twpayne/go-polyline"
)

func TestDecodeKnownPrecision5Fixture(t *testing.T) {
	points, err := Precision5.Decode("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)
	require.Len(t, points, 3)

	want := []Point{
		{Lon: -120.2, Lat: 38.5},
		{Lon: -120.95, Lat: 40.7},
		{Lon: -126.453, Lat: 43.252},
	}
	assert.Equal(t, want, points)
}

func TestDecodeEmpty(t *testing.T) {
	points, err := Decode("")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDecodeTruncated(t *testing.T) {
	// "_p~iF" alone is a complete latitude group with no longitude group.
	_, err := Precision5.Decode("_p~iF")
	assert.ErrorIs(t, err, ErrTruncated)

	// A dangling continuation chunk.
	_, err = Precision5.Decode("_p~iF~ps|U_")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeRestartable(t *testing.T) {
	const encoded = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	first, err := Precision5.Decode(encoded)
	require.NoError(t, err)
	second, err := Precision5.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Cross-check the six-digit decoder against an independent encoder.
func TestDecodeValhallaRoundTrip(t *testing.T) {
	coords := [][]float64{
		{42.280826, -83.743303}, // lat, lon as the oracle encodes them
		{42.281415, -83.741981},
		{42.282002, -83.740697},
		{42.282002, -83.740697}, // repeated fix, zero delta
		{42.279934, -83.746253},
	}
	codec := gopolyline.Codec{Dim: 2, Scale: 1e6}
	encoded := string(codec.EncodeCoords(nil, coords))

	points, err := Decode(encoded)
	require.NoError(t, err)
	require.Len(t, points, len(coords))
	for i, p := range points {
		assert.InDelta(t, coords[i][0], p.Lat, 1e-6, "lat %d", i)
		assert.InDelta(t, coords[i][1], p.Lon, 1e-6, "lon %d", i)
	}
}

func TestDecodeNegativeAndPositiveDeltas(t *testing.T) {
	coords := [][]float64{
		{-33.865143, 151.209900},
		{-33.864000, 151.211000},
		{-33.866500, 151.208100},
	}
	codec := gopolyline.Codec{Dim: 2, Scale: 1e6}
	encoded := string(codec.EncodeCoords(nil, coords))

	points, err := Decode(encoded)
	require.NoError(t, err)
	require.Len(t, points, 3)
	for i, p := range points {
		assert.InDelta(t, coords[i][0], p.Lat, 1e-6)
		assert.InDelta(t, coords[i][1], p.Lon, 1e-6)
	}
}
