package geo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geohashd/internal/geo"
	"geohashd/internal/stock"
)

// The canonical vector from the algorithm's announcement:
// md5("2005-05-26-10458.68") = db9318c2259923d08b672cb305440f97,
// putting the 37,-122 hashpoint at 37.857713, -122.544543.
func TestHashFractions_KnownVector(t *testing.T) {
	latFrac, lonFrac := geo.HashFractions(stock.Date{Year: 2005, Month: 5, Day: 26}, "10458.68")
	require.InDelta(t, 0.8577132677070023, latFrac, 1e-12)
	require.InDelta(t, 0.5445430695592821, lonFrac, 1e-12)
}

func TestMakeInfo_NorthWestGraticule(t *testing.T) {
	g := geo.Graticule{LatDeg: 37, LonDeg: 122, West: true}
	info := geo.MakeInfo(g, stock.Date{Year: 2005, Month: 5, Day: 26}, "10458.68")

	require.InDelta(t, 37.857713, info.Latitude, 1e-6)
	require.InDelta(t, -122.544543, info.Longitude, 1e-6)
	require.Equal(t, "10458.68", info.Stock)
	require.Equal(t, g, info.Graticule)
}

func TestMakeInfo_SouthernHemisphereAppendsToMagnitude(t *testing.T) {
	g := geo.Graticule{LatDeg: 34, LonDeg: 58, South: true, West: true}
	info := geo.MakeInfo(g, stock.Date{Year: 2009, Month: 11, Day: 30}, "10309.92")

	latFrac, lonFrac := geo.HashFractions(stock.Date{Year: 2009, Month: 11, Day: 30}, "10309.92")
	require.InDelta(t, -(34 + latFrac), info.Latitude, 1e-12)
	require.InDelta(t, -(58 + lonFrac), info.Longitude, 1e-12)
}

func TestMakeInfo_ValueStringIsHashedVerbatim(t *testing.T) {
	g := geo.Graticule{LatDeg: 37, LonDeg: 122, West: true}
	date := stock.Date{Year: 2005, Month: 5, Day: 26}

	// "10458.68" and "10458.680" are the same number but different
	// hash inputs; the record keeps the published text for this reason.
	a := geo.MakeInfo(g, date, "10458.68")
	b := geo.MakeInfo(g, date, "10458.680")
	require.NotEqual(t, a.Latitude, b.Latitude)
}

func TestInfo_DistanceTo(t *testing.T) {
	g := geo.Graticule{LatDeg: 37, LonDeg: 122, West: true}
	info := geo.MakeInfo(g, stock.Date{Year: 2005, Month: 5, Day: 26}, "10458.68")

	require.InDelta(t, 0, info.DistanceTo(info.Latitude, info.Longitude), 1e-9)
	require.Greater(t, info.DistanceTo(37.0, -122.0), 0.0)
}
