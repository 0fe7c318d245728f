// Package geo maps coordinates to countries.
package geo

// Unknown is the reserved country value returned when no region
// contains a point. It is a valid, storable label, not an error.
const Unknown = "UNKNOWN"

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Resolver assigns a country code to a coordinate. Implementations
// must always return a value, using Unknown when nothing matches.
type Resolver interface {
	Resolve(lon, lat float64) string
}

// Midpoint returns the arithmetic average of two points. This is an
// approximation, not a polygon centroid: for a rectangular extent it
// lands in the middle, and downstream labels were produced against
// exactly this arithmetic, so it is kept as-is.
func Midpoint(a, b Point) Point {
	return Point{
		Lat: (a.Lat + b.Lat) / 2,
		Lon: (a.Lon + b.Lon) / 2,
	}
}

// BoundingBox is a rectangular extent given by its south-west and
// north-east corners.
type BoundingBox struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
}

// Contains reports whether p falls inside the box. Boxes crossing the
// antimeridian are not handled; the stream filter boxes we use do not
// cross it.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lon >= b.SouthWest.Lon && p.Lon <= b.NorthEast.Lon
}

// Corners returns the box corners in order. The first and last entry
// are the corners the midpoint approximation uses.
func (b BoundingBox) Corners() []Point {
	return []Point{
		b.SouthWest,
		{Lat: b.SouthWest.Lat, Lon: b.NorthEast.Lon},
		b.NorthEast,
		{Lat: b.NorthEast.Lat, Lon: b.SouthWest.Lon},
	}
}
