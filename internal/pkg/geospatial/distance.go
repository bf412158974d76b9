// Package geospatial has the distance math the blockage proximity queries
// need. City-scale accuracy; nothing here is fit for measuring across
// hemispheres.
package geospatial

import (
	"math"

	"github.com/routelab/routeboard/internal/core/domain"
)

const (
	earthRadiusM    = 6371000.0
	metersPerDegLat = 111320.0
)

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b domain.Point) float64 {
	dLat := rad(b.Lat - a.Lat)
	dLon := rad(b.Long - a.Long)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius reports whether p lies within radiusM meters of center and,
// when it does, the distance. A degree-box check runs first so most
// candidates never reach the trigonometry.
func WithinRadius(center, p domain.Point, radiusM float64) (float64, bool) {
	latDelta := radiusM / metersPerDegLat
	lonDelta := radiusM / (metersPerDegLat * math.Cos(rad(center.Lat)))
	if math.Abs(p.Lat-center.Lat) > latDelta || math.Abs(p.Long-center.Long) > lonDelta {
		return 0, false
	}
	d := Distance(center, p)
	return d, d <= radiusM
}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}
