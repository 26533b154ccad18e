package geo

import "math"

// CoordinatePrecision converts between degrees and the fixed-point
// representation (1e-6 degree units).
const CoordinatePrecision = 1_000_000

const invalidE6 = math.MinInt32

// Coordinate is a geographic position stored fixed-point: degrees
// multiplied by 1e6 as signed 32-bit integers.
type Coordinate struct {
	LatE6 int32
	LonE6 int32
}

// NewCoordinate builds a fixed-point coordinate from degree values.
func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		LatE6: int32(math.Round(lat * CoordinatePrecision)),
		LonE6: int32(math.Round(lon * CoordinatePrecision)),
	}
}

// InvalidCoordinate returns the sentinel used for "no position".
func InvalidCoordinate() Coordinate {
	return Coordinate{LatE6: invalidE6, LonE6: invalidE6}
}

// Lat returns the latitude in degrees.
func (c Coordinate) Lat() float64 { return float64(c.LatE6) / CoordinatePrecision }

// Lon returns the longitude in degrees.
func (c Coordinate) Lon() float64 { return float64(c.LonE6) / CoordinatePrecision }

// Valid reports whether the coordinate is a usable geographic position.
// The sentinel and out-of-range values are rejected. Longitude -180 is
// excluded; +180 is the canonical form of the antimeridian.
func (c Coordinate) Valid() bool {
	if c.LatE6 == invalidE6 && c.LonE6 == invalidE6 {
		return false
	}
	if c.LatE6 < -90*CoordinatePrecision || c.LatE6 > 90*CoordinatePrecision {
		return false
	}
	if c.LonE6 <= -180*CoordinatePrecision || c.LonE6 > 180*CoordinatePrecision {
		return false
	}
	return true
}
