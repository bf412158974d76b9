package ports

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/routelab/routeboard/internal/core/domain"
)

// RoutingService is the remote routing/blockage collaborator. Implementations
// map transport failures onto the domain error taxonomy. Retry policy, if
// any, belongs to the implementation; callers never retry.
type RoutingService interface {
	// Ready reports whether the service has finished loading its graph.
	// A false result with nil error means "keep waiting"; a non-nil error
	// is a definitive 4xx/5xx and is distinct from not-ready.
	Ready(ctx context.Context) (bool, error)

	// AllRoadTypes returns every road-type name the service knows.
	AllRoadTypes(ctx context.Context) ([]string, error)

	// ValidRoadTypes returns the subset currently used by the router.
	ValidRoadTypes(ctx context.Context) ([]string, error)

	// SetValidRoadTypes replaces the active subset and returns the new one.
	// Callers must never pass a name absent from AllRoadTypes.
	SetValidRoadTypes(ctx context.Context, types []string) ([]string, error)

	// RoadTypeGeometry fetches the geometry for one road type, normalized
	// from any of the three accepted response shapes.
	RoadTypeGeometry(ctx context.Context, name string) (domain.NormalizedGeometry, error)

	// Route computes the path between two points.
	Route(ctx context.Context, req domain.RouteRequest) (*geojson.FeatureCollection, error)

	// Blockages returns the full blockage set. An absent or malformed body
	// is an empty collection, never an error.
	Blockages(ctx context.Context) (*geojson.FeatureCollection, error)

	// AddBlockage registers a new blockage.
	AddBlockage(ctx context.Context, b domain.Blockage) error

	// DeleteBlockage removes a blockage by name.
	DeleteBlockage(ctx context.Context, name string) error
}

// Geocoder resolves free-text place queries into candidate points.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]domain.GeocodeResult, error)
}
