package geo

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"geohashd/internal/stock"
)

// Info is a fully resolved hashpoint: the target coordinate for one
// date and graticule, plus the stock value that seeded it.
type Info struct {
	Date      stock.Date `json:"date"`
	Graticule Graticule  `json:"graticule"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Stock     string     `json:"stock"`
}

// DistanceTo is the distance in meters from the coordinate to the
// hashpoint.
func (i Info) DistanceTo(lat, lon float64) float64 {
	return Distance(lat, lon, i.Latitude, i.Longitude)
}

// HashFractions derives the two coordinate fractions for a date and
// stock value. The digest input is "YYYY-MM-DD-<value>" with the value
// exactly as published; each half of the MD5 sum, read as a big-endian
// 64-bit integer, becomes a fraction in [0,1).
func HashFractions(date stock.Date, value string) (latFrac, lonFrac float64) {
	sum := md5.Sum([]byte(fmt.Sprintf("%s-%s", date, value)))
	latFrac = float64(binary.BigEndian.Uint64(sum[:8])) / (1 << 64)
	lonFrac = float64(binary.BigEndian.Uint64(sum[8:])) / (1 << 64)
	return latFrac, lonFrac
}

// MakeInfo resolves the hashpoint for date in g, seeded by value. The
// hashed date is the adventure date itself; for 30W graticules the
// caller supplies the previous day's stock value (the provider's
// effective-date handling does this).
func MakeInfo(g Graticule, date stock.Date, value string) Info {
	latFrac, lonFrac := HashFractions(date, value)

	lat := float64(g.LatDeg) + latFrac
	if g.South {
		lat = -lat
	}
	lon := float64(g.LonDeg) + lonFrac
	if g.West {
		lon = -lon
	}

	return Info{
		Date:      date,
		Graticule: g,
		Latitude:  lat,
		Longitude: lon,
		Stock:     value,
	}
}
