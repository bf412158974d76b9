package domain

import (
	"fmt"
	"math"
)

// Point is a geographic coordinate (WGS 84) with an optional display label.
// Field names follow the routing service's wire contract.
type Point struct {
	Long        float64 `json:"long"`
	Lat         float64 `json:"lat"`
	Description string  `json:"description,omitempty"`
}

// Validate rejects non-finite coordinates. Geographic range validation is
// left to the routing service, which is authoritative.
func (p Point) Validate() error {
	if math.IsNaN(p.Long) || math.IsInf(p.Long, 0) {
		return &ValidationError{Field: "long", Reason: fmt.Sprintf("not a finite number: %v", p.Long)}
	}
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return &ValidationError{Field: "lat", Reason: fmt.Sprintf("not a finite number: %v", p.Lat)}
	}
	return nil
}

// RouteRequest is the body of a route computation call.
type RouteRequest struct {
	StartPt Point `json:"startPt"`
	EndPt   Point `json:"endPt"`
}

// GeocodeResult is one entry returned by the geocoding collaborator.
type GeocodeResult struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Long        float64 `json:"lon"`
	PlaceID     int64   `json:"place_id"`
	Type        string  `json:"type"`
}

// Point converts a geocode result into a labelled point.
func (r GeocodeResult) Point() Point {
	return Point{Long: r.Long, Lat: r.Lat, Description: r.DisplayName}
}
