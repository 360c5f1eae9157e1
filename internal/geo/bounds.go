package geo

import "math"

// Bounds is a latitude/longitude box that contains every point within a radius.
// FullLongitude is set when the box touches a pole or crosses the antimeridian;
// the longitude bounds are then meaningless and must not be applied.
type Bounds struct {
	MinLat        float64 `json:"min_lat"`
	MaxLat        float64 `json:"max_lat"`
	MinLng        float64 `json:"min_lng"`
	MaxLng        float64 `json:"max_lng"`
	FullLongitude bool    `json:"full_longitude"`
}

// boxMarginDeg widens the box so float rounding never excludes a boundary point
const boxMarginDeg = 1e-6

// BoundingBox returns a box enclosing the spherical cap of radiusKm around center
func BoundingBox(center Point, radiusKm float64) Bounds {
	angular := radiusKm / EarthRadiusKm
	dLat := toDegrees(angular) + boxMarginDeg

	b := Bounds{
		MinLat: center.Lat - dLat,
		MaxLat: center.Lat + dLat,
	}

	if b.MinLat <= -90 || b.MaxLat >= 90 {
		b.MinLat = math.Max(b.MinLat, -90)
		b.MaxLat = math.Min(b.MaxLat, 90)
		b.MinLng, b.MaxLng = -180, 180
		b.FullLongitude = true
		return b
	}

	ratio := math.Sin(angular) / math.Cos(toRadians(center.Lat))
	if ratio >= 1 {
		b.MinLng, b.MaxLng = -180, 180
		b.FullLongitude = true
		return b
	}

	dLng := toDegrees(math.Asin(ratio)) + boxMarginDeg
	b.MinLng = center.Lng - dLng
	b.MaxLng = center.Lng + dLng

	if b.MinLng < -180 || b.MaxLng > 180 {
		b.MinLng, b.MaxLng = -180, 180
		b.FullLongitude = true
	}
	return b
}

// contains reports whether p falls inside the box
func (b Bounds) contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.FullLongitude {
		return true
	}
	return p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}
