package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMidpoint(t *testing.T) {
	got := Midpoint(Point{Lat: 10, Lon: 10}, Point{Lat: 20, Lon: 30})
	assert.Equal(t, Point{Lat: 15, Lon: 20}, got)

	// Plain arithmetic, even across sign changes. No spherical or
	// antimeridian correction, matching the reference labeling.
	got = Midpoint(Point{Lat: -40, Lon: -75}, Point{Lat: 40, Lon: 75})
	assert.Equal(t, Point{Lat: 0, Lon: 0}, got)
}

func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{
		SouthWest: Point{Lat: 23.2193, Lon: -125.1088},
		NorthEast: Point{Lat: 47.4416, Lon: -66.595},
	}

	assert.True(t, box.Contains(Point{Lat: 40.0, Lon: -75.0}))
	assert.False(t, box.Contains(Point{Lat: 48.85, Lon: 2.35}))
	assert.True(t, box.Contains(box.SouthWest), "edges are inclusive")
}

func TestBoundingBoxCorners(t *testing.T) {
	box := BoundingBox{
		SouthWest: Point{Lat: 10, Lon: 10},
		NorthEast: Point{Lat: 20, Lon: 20},
	}

	corners := box.Corners()
	assert.Len(t, corners, 4)
	assert.Equal(t, Point{Lat: 10, Lon: 10}, corners[0], "first corner is south-west")
	assert.Equal(t, Point{Lat: 20, Lon: 10}, corners[3], "last corner is north-west")
}

func TestRectResolver(t *testing.T) {
	r := NewRectResolver()

	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"philadelphia", 40.0, -75.0, "US"},
		{"paris", 48.85, 2.35, "FR"},
		{"berlin", 52.52, 13.40, "DE"},
		{"sydney", -33.87, 151.21, "AU"},
		{"moscow crosses the antimeridian rect", 55.75, 37.62, "RU"},
		{"singapore wins over the malaysian extent", 1.29, 103.85, "SG"},
		{"mid atlantic", 0, -30, Unknown},
		{"south pole", -90, 0, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.lon, tt.lat))
		})
	}
}

func TestRectResolverAlwaysReturnsValue(t *testing.T) {
	r := NewRectResolver()
	for _, p := range []Point{{91, 0}, {-91, 0}, {0, 181}, {0, -181}} {
		got := r.Resolve(p.Lon, p.Lat)
		assert.NotEmpty(t, got, "resolver must never return an empty country")
	}
}
