package geo

import (
	"sort"

	"github.com/golang/geo/s2"
)

// countryRect is a country's bounding rectangle: ISO 3166-1 alpha-2
// code plus west/south/east/north extents in degrees.
type countryRect struct {
	code                           string
	minLon, minLat, maxLon, maxLat float64
}

// Continental extents, Natural Earth derived. Small islands and remote
// territories are approximated away; a point on one resolves to
// Unknown, which the store treats as a regular label.
var countryRects = []countryRect{
	{"US", -125.00, 24.50, -66.90, 49.40},
	{"CA", -141.00, 41.70, -52.60, 83.10},
	{"MX", -117.12, 14.53, -86.81, 32.72},
	{"GT", -92.23, 13.74, -88.23, 17.82},
	{"BZ", -89.23, 15.89, -88.10, 18.50},
	{"SV", -90.10, 13.15, -87.72, 14.42},
	{"HN", -89.35, 12.98, -83.15, 16.01},
	{"NI", -87.67, 10.73, -83.15, 15.02},
	{"CR", -85.94, 8.23, -82.55, 11.22},
	{"PA", -82.97, 7.22, -77.24, 9.61},
	{"CU", -84.97, 19.86, -74.18, 23.19},
	{"JM", -78.34, 17.70, -76.20, 18.52},
	{"HT", -74.46, 18.03, -71.62, 19.92},
	{"DO", -71.95, 17.60, -68.32, 19.88},
	{"BR", -73.99, -33.77, -34.73, 5.24},
	{"AR", -73.42, -55.25, -53.63, -21.83},
	{"CL", -75.64, -55.61, -66.96, -17.58},
	{"CO", -78.99, -4.30, -66.88, 12.44},
	{"PE", -81.41, -18.35, -68.67, -0.06},
	{"VE", -73.30, 0.72, -59.76, 12.16},
	{"EC", -80.97, -4.96, -75.23, 1.38},
	{"BO", -69.59, -22.87, -57.50, -9.76},
	{"PY", -62.69, -27.55, -54.29, -19.34},
	{"UY", -58.43, -34.95, -53.21, -30.11},
	{"GY", -61.41, 1.27, -56.54, 8.37},
	{"SR", -58.04, 1.82, -53.96, 6.03},
	{"GB", -7.57, 49.96, 1.68, 58.64},
	{"IE", -9.98, 51.67, -6.03, 55.13},
	{"IS", -24.33, 63.50, -13.61, 66.53},
	{"PT", -9.53, 36.84, -6.39, 42.28},
	{"ES", -9.39, 35.95, 3.32, 43.75},
	{"FR", -4.79, 42.33, 8.23, 51.09},
	{"BE", 2.51, 49.53, 6.16, 51.48},
	{"NL", 3.31, 50.80, 7.09, 53.51},
	{"LU", 5.67, 49.44, 6.24, 50.13},
	{"DE", 5.99, 47.30, 15.02, 54.98},
	{"CH", 5.96, 45.78, 10.49, 47.83},
	{"AT", 9.48, 46.43, 16.98, 49.04},
	{"IT", 6.75, 36.62, 18.48, 47.12},
	{"DK", 8.09, 54.80, 12.69, 57.73},
	{"NO", 4.99, 58.08, 31.29, 70.92},
	{"SE", 11.03, 55.36, 23.90, 69.11},
	{"FI", 20.65, 59.81, 31.52, 70.14},
	{"EE", 23.34, 57.47, 28.13, 59.61},
	{"LV", 21.06, 55.62, 28.18, 57.97},
	{"LT", 21.06, 53.91, 26.59, 56.37},
	{"PL", 14.07, 49.03, 24.03, 54.85},
	{"CZ", 12.24, 48.56, 18.85, 51.12},
	{"SK", 16.88, 47.76, 22.56, 49.57},
	{"HU", 16.20, 45.76, 22.71, 48.62},
	{"RO", 20.22, 43.69, 29.63, 48.22},
	{"BG", 22.38, 41.23, 28.56, 44.23},
	{"GR", 20.15, 34.92, 26.60, 41.83},
	{"HR", 13.66, 42.48, 19.39, 46.50},
	{"SI", 13.70, 45.45, 16.56, 46.85},
	{"BA", 15.75, 42.65, 19.60, 45.23},
	{"RS", 18.83, 42.25, 22.99, 46.17},
	{"MK", 20.46, 40.84, 22.95, 42.32},
	{"AL", 19.30, 39.62, 21.02, 42.69},
	{"MD", 26.62, 45.49, 30.02, 48.47},
	{"UA", 22.09, 44.36, 40.08, 52.34},
	{"BY", 23.20, 51.32, 32.69, 56.17},
	{"RU", 19.64, 41.15, -169.05, 81.25},
	{"TR", 26.04, 35.82, 44.79, 42.14},
	{"GE", 39.96, 41.06, 46.64, 43.55},
	{"AM", 43.58, 38.74, 46.51, 41.25},
	{"AZ", 44.79, 38.27, 50.39, 41.86},
	{"SY", 35.70, 32.31, 42.35, 37.23},
	{"LB", 35.13, 33.09, 36.61, 34.64},
	{"IL", 34.27, 29.50, 35.84, 33.28},
	{"JO", 34.92, 29.20, 39.20, 33.38},
	{"IQ", 38.79, 29.10, 48.57, 37.39},
	{"IR", 44.11, 25.08, 63.32, 39.71},
	{"SA", 34.63, 16.35, 55.67, 32.16},
	{"AE", 51.58, 22.50, 56.40, 26.06},
	{"YE", 42.60, 12.59, 53.11, 19.00},
	{"OM", 52.00, 16.65, 59.81, 26.40},
	{"KW", 46.57, 28.53, 48.42, 30.06},
	{"QA", 50.74, 24.56, 51.61, 26.11},
	{"EG", 24.70, 22.00, 36.87, 31.59},
	{"LY", 9.32, 19.58, 25.16, 33.14},
	{"TN", 7.52, 30.31, 11.49, 37.35},
	{"DZ", -8.68, 19.06, 11.99, 37.12},
	{"MA", -17.02, 21.42, -1.12, 35.76},
	{"MR", -17.06, 14.62, -4.92, 27.40},
	{"ML", -12.17, 10.10, 4.27, 24.97},
	{"NE", 0.30, 11.66, 15.90, 23.47},
	{"TD", 13.54, 7.42, 23.89, 23.41},
	{"SD", 21.94, 8.62, 38.41, 22.00},
	{"SN", -17.63, 12.33, -11.47, 16.60},
	{"CI", -8.60, 4.34, -2.56, 10.52},
	{"GH", -3.24, 4.71, 1.06, 11.10},
	{"NG", 2.69, 4.24, 14.58, 13.87},
	{"CM", 8.49, 1.73, 16.01, 12.86},
	{"ET", 32.95, 3.42, 47.79, 14.96},
	{"KE", 33.89, -4.68, 41.86, 5.51},
	{"UG", 29.58, -1.44, 35.04, 4.25},
	{"TZ", 29.34, -11.72, 40.32, -0.95},
	{"CD", 12.18, -13.26, 31.17, 5.26},
	{"AO", 11.64, -17.93, 24.08, -4.44},
	{"ZM", 21.89, -17.96, 33.49, -8.24},
	{"ZW", 25.26, -22.27, 32.85, -15.51},
	{"MZ", 30.18, -26.74, 40.78, -10.32},
	{"MG", 43.25, -25.60, 50.48, -12.04},
	{"ZA", 16.34, -34.82, 32.83, -22.09},
	{"AF", 60.53, 29.32, 75.16, 38.49},
	{"PK", 60.87, 23.69, 77.84, 37.13},
	{"KZ", 46.47, 40.66, 87.36, 55.39},
	{"UZ", 55.93, 37.14, 73.06, 45.59},
	{"TM", 52.50, 35.27, 66.55, 42.75},
	{"KG", 69.46, 39.28, 80.26, 43.30},
	{"TJ", 67.44, 36.74, 74.98, 40.96},
	{"MN", 87.75, 41.60, 119.77, 52.05},
	{"CN", 73.68, 18.20, 134.77, 53.46},
	{"IN", 68.18, 7.97, 97.40, 35.49},
	{"NP", 80.09, 26.40, 88.17, 30.42},
	{"BD", 88.08, 20.67, 92.67, 26.45},
	{"LK", 79.70, 5.97, 81.79, 9.82},
	{"MM", 92.30, 9.93, 101.18, 28.34},
	{"TH", 97.38, 5.69, 105.59, 20.42},
	{"LA", 100.12, 13.88, 107.56, 22.46},
	{"KH", 102.35, 10.49, 107.61, 14.57},
	{"VN", 102.17, 8.60, 109.34, 23.35},
	{"MY", 100.09, 0.77, 119.18, 6.93},
	{"SG", 103.60, 1.16, 104.00, 1.47},
	{"ID", 95.29, -10.36, 141.03, 5.48},
	{"PH", 117.17, 5.58, 126.54, 18.51},
	{"JP", 129.41, 31.03, 145.54, 45.55},
	{"KR", 126.12, 34.39, 129.47, 38.61},
	{"KP", 124.27, 37.67, 130.78, 42.99},
	{"AU", 113.34, -43.63, 153.57, -10.67},
	{"NZ", 166.51, -46.64, 178.52, -34.45},
	{"PG", 141.00, -10.65, 156.02, -2.50},
}

type indexedRect struct {
	code string
	rect s2.Rect
	area float64
}

// RectResolver resolves countries by rectangle containment over the
// embedded extents table. When several rectangles contain a point the
// smallest one wins, which keeps enclosed countries (Singapore inside
// the Malaysian extent, and the like) resolvable.
type RectResolver struct {
	rects []indexedRect
}

// NewRectResolver builds the resolver from the embedded table.
func NewRectResolver() *RectResolver {
	r := &RectResolver{rects: make([]indexedRect, 0, len(countryRects))}
	for _, cr := range countryRects {
		rect := s2.RectFromLatLng(s2.LatLngFromDegrees(cr.minLat, cr.minLon))
		rect = rect.AddPoint(s2.LatLngFromDegrees(cr.maxLat, cr.maxLon))
		size := rect.Size()
		r.rects = append(r.rects, indexedRect{
			code: cr.code,
			rect: rect,
			area: size.Lat.Radians() * size.Lng.Radians(),
		})
	}
	sort.Slice(r.rects, func(i, j int) bool { return r.rects[i].area < r.rects[j].area })
	return r
}

// Resolve returns the country whose smallest containing rectangle
// holds the point, or Unknown.
func (r *RectResolver) Resolve(lon, lat float64) string {
	ll := s2.LatLngFromDegrees(lat, lon)
	for _, ir := range r.rects {
		if ir.rect.ContainsLatLng(ll) {
			return ir.code
		}
	}
	return Unknown
}
