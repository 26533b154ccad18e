package api

import (
	"math"
	"strings"

	"map_matcher/pkg/geo"
)

// encodePolyline encodes coordinates with the Google polyline algorithm at
// the conventional 1e-5 precision.
func encodePolyline(coords []geo.Coordinate) string {
	var buf strings.Builder
	buf.Grow(len(coords) * 6)

	var prevLat, prevLng int64
	for _, c := range coords {
		lat := int64(math.Round(c.Lat() * 1e5))
		lng := int64(math.Round(c.Lon() * 1e5))
		encodePolylineValue(&buf, lat-prevLat)
		encodePolylineValue(&buf, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return buf.String()
}

func encodePolylineValue(buf *strings.Builder, v int64) {
	u := uint64(v) << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		buf.WriteByte(byte(0x20|(u&0x1f)) + 63)
		u >>= 5
	}
	buf.WriteByte(byte(u) + 63)
}
