// Package geo ranks located items by great-circle distance from a center point.
// Everything here is a pure function of its inputs; no state survives a call.
package geo

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
)

// EarthRadiusKm is the mean Earth radius used by Distance
const EarthRadiusKm = 6371.0

const (
	DefaultMinRadiusKm = 1.0
	DefaultMaxRadiusKm = 500.0
	DefaultResultLimit = 20

	// cancellation is polled once per this many candidates
	ctxCheckEvery = 256
)

// Point is a WGS 84 coordinate in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate rejects coordinates outside [-90,90] x [-180,180]
func (p Point) Validate(op string) error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return apperr.Validation(op, "lat", fmt.Sprintf("latitude %v must be between -90 and 90", p.Lat))
	}
	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return apperr.Validation(op, "lng", fmt.Sprintf("longitude %v must be between -180 and 180", p.Lng))
	}
	return nil
}

// Locatable is anything with a stable id and a position
type Locatable interface {
	GeoID() string
	GeoPoint() Point
}

// Match pairs a candidate with its distance from the query center
type Match[T Locatable] struct {
	Item       T
	DistanceKm float64
}

// Options bound a radius query
type Options struct {
	MinRadiusKm float64
	MaxRadiusKm float64
	Limit       int
}

// DefaultOptions returns the emergency-routing bounds: radius 1..500 km, 20 results
func DefaultOptions() Options {
	return Options{
		MinRadiusKm: DefaultMinRadiusKm,
		MaxRadiusKm: DefaultMaxRadiusKm,
		Limit:       DefaultResultLimit,
	}
}

// ValidateQuery checks center and radius against opts without touching candidates
func ValidateQuery(op string, center Point, radiusKm float64, opts Options) error {
	if err := center.Validate(op); err != nil {
		return err
	}
	if math.IsNaN(radiusKm) || radiusKm < opts.MinRadiusKm || radiusKm > opts.MaxRadiusKm {
		return apperr.Validation(op, "radius_km",
			fmt.Sprintf("radius %v km must be between %v and %v", radiusKm, opts.MinRadiusKm, opts.MaxRadiusKm))
	}
	return nil
}

// Distance returns the haversine great-circle distance between a and b in km
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// FindWithinRadius returns the candidates within radiusKm of center, nearest first.
// Ties are ordered by GeoID. The limit is applied only after the full sort.
// Candidates with invalid coordinates are skipped rather than failing the query.
func FindWithinRadius[T Locatable](ctx context.Context, center Point, radiusKm float64, candidates []T, opts Options) ([]Match[T], error) {
	const op = "geo.find_within_radius"

	if err := ValidateQuery(op, center, radiusKm, opts); err != nil {
		return nil, err
	}

	matches := make([]Match[T], 0)
	for i, c := range candidates {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		p := c.GeoPoint()
		if p.Validate(op) != nil {
			continue
		}

		d := Distance(center, p)
		if d <= radiusKm {
			matches = append(matches, Match[T]{Item: c, DistanceKm: d})
		}
	}

	slices.SortFunc(matches, func(a, b Match[T]) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.GeoID(), b.Item.GeoID())
	})

	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
