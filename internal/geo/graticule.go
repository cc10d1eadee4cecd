// Package geo holds the geographic side of geohashing: graticules, the
// daily hashpoint derivation and distance math.
package geo

import (
	"fmt"
	"math"
)

// Graticule is one 1-degree-by-1-degree cell. Magnitude and hemisphere
// are kept separate so the negative-zero graticules (0..-1 latitude or
// longitude) stay representable.
type Graticule struct {
	LatDeg int  // 0..89, magnitude only
	LonDeg int  // 0..179, magnitude only
	South  bool
	West   bool
}

// GraticuleAt returns the cell containing the coordinate.
func GraticuleAt(lat, lon float64) (Graticule, error) {
	if lat <= -90 || lat >= 90 {
		return Graticule{}, fmt.Errorf("latitude out of range: %v", lat)
	}
	if lon <= -180 || lon >= 180 {
		return Graticule{}, fmt.Errorf("longitude out of range: %v", lon)
	}
	return Graticule{
		LatDeg: int(math.Floor(math.Abs(lat))),
		LonDeg: int(math.Floor(math.Abs(lon))),
		South:  math.Signbit(lat),
		West:   math.Signbit(lon),
	}, nil
}

// Uses30WRule reports whether this graticule takes the previous day's
// stock value. Everything east of the 30W meridian does.
func (g Graticule) Uses30WRule() bool {
	return !g.West || g.LonDeg < 30
}

// Latitude is the signed degree component, without the fraction.
func (g Graticule) Latitude() float64 {
	if g.South {
		return -float64(g.LatDeg)
	}
	return float64(g.LatDeg)
}

// Longitude is the signed degree component, without the fraction.
func (g Graticule) Longitude() float64 {
	if g.West {
		return -float64(g.LonDeg)
	}
	return float64(g.LonDeg)
}

func (g Graticule) String() string {
	latSign, lonSign := "", ""
	if g.South {
		latSign = "-"
	}
	if g.West {
		lonSign = "-"
	}
	return fmt.Sprintf("%s%d,%s%d", latSign, g.LatDeg, lonSign, g.LonDeg)
}

const earthRadiusMeters = 6371000

// Distance is the haversine great-circle distance in meters between two
// coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
