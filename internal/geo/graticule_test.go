package geo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geohashd/internal/geo"
)

func TestGraticuleAt(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		want     geo.Graticule
	}{
		{"northeast", 52.5, 13.4, geo.Graticule{LatDeg: 52, LonDeg: 13}},
		{"northwest", 37.8, -122.4, geo.Graticule{LatDeg: 37, LonDeg: 122, West: true}},
		{"southwest", -34.6, -58.4, geo.Graticule{LatDeg: 34, LonDeg: 58, South: true, West: true}},
		{"negative zero latitude", -0.5, 36.8, geo.Graticule{LatDeg: 0, LonDeg: 36, South: true}},
		{"negative zero longitude", 51.5, -0.1, geo.Graticule{LatDeg: 51, LonDeg: 0, West: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := geo.GraticuleAt(tc.lat, tc.lon)
			require.NoError(t, err)
			require.Equal(t, tc.want, g)
		})
	}
}

func TestGraticuleAt_OutOfRange(t *testing.T) {
	_, err := geo.GraticuleAt(90, 0)
	require.Error(t, err)
	_, err = geo.GraticuleAt(0, 180)
	require.Error(t, err)
}

func TestUses30WRule(t *testing.T) {
	cases := []struct {
		name string
		g    geo.Graticule
		want bool
	}{
		{"berlin, east of meridian", geo.Graticule{LatDeg: 52, LonDeg: 13}, true},
		{"san francisco, far west", geo.Graticule{LatDeg: 37, LonDeg: 122, West: true}, false},
		{"london, west but inside 30W", geo.Graticule{LatDeg: 51, LonDeg: 0, West: true}, true},
		{"azores, west of 30W", geo.Graticule{LatDeg: 37, LonDeg: 30, West: true}, false},
		{"w29 graticule is still east", geo.Graticule{LatDeg: 38, LonDeg: 29, West: true}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.g.Uses30WRule())
		})
	}
}

func TestGraticule_SignedComponents(t *testing.T) {
	g := geo.Graticule{LatDeg: 34, LonDeg: 58, South: true, West: true}
	require.Equal(t, -34.0, g.Latitude())
	require.Equal(t, -58.0, g.Longitude())
	require.Equal(t, "-34,-58", g.String())
}

func TestDistance(t *testing.T) {
	// Paris to London, roughly 344 km.
	d := geo.Distance(48.8566, 2.3522, 51.5074, -0.1278)
	require.InDelta(t, 344000, d, 2000)

	require.InDelta(t, 0, geo.Distance(37.5, -122.5, 37.5, -122.5), 1e-9)
}
