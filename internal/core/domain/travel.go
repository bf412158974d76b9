package domain

// TravelType selects which road-type set the routing service may use.
type TravelType string

const (
	TravelCar     TravelType = "car"
	TravelBicycle TravelType = "bicycle"
	TravelWalk    TravelType = "walk"
)

// Valid reports whether t is a known travel type.
func (t TravelType) Valid() bool {
	switch t {
	case TravelCar, TravelBicycle, TravelWalk:
		return true
	}
	return false
}

// RoadTypes returns the OSM road classifications usable by this travel type.
func (t TravelType) RoadTypes() []string {
	switch t {
	case TravelCar:
		return []string{
			"primary", "secondary", "tertiary", "trunk", "motorway",
			"residential", "primary_link", "secondary_link", "tertiary_link",
			"motorway_link", "trunk_link",
		}
	case TravelBicycle:
		return []string{
			"cycleway", "residential", "primary", "secondary", "tertiary",
			"path", "footway",
		}
	case TravelWalk:
		return []string{"footway", "path", "residential", "pedestrian", "steps"}
	}
	return nil
}

// Default map framing (central Singapore).
const (
	DefaultCenterLat = 1.3521
	DefaultCenterLon = 103.8198
	DefaultZoom      = 12
)
