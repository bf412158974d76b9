package domain

import (
	"bytes"
	"encoding/json"

	"github.com/paulmach/orb/geojson"
)

// GeometryKind tags the outcome of normalizing a remote geometry payload.
type GeometryKind int

const (
	// GeometryCollectionKind is a feature collection with at least one feature.
	GeometryCollectionKind GeometryKind = iota
	// GeometryEmpty is an absent, null, or zero-feature payload.
	GeometryEmpty
	// GeometryUnrecognized is a payload whose shape could not be interpreted.
	GeometryUnrecognized
)

// NormalizedGeometry is the result of shape-sniffing a remote response.
// Collection is non-nil only when Kind is GeometryCollectionKind.
type NormalizedGeometry struct {
	Kind       GeometryKind
	Collection *geojson.FeatureCollection
	Detail     string // for GeometryUnrecognized: what went wrong
}

// NormalizeGeometry accepts the three payload shapes the routing service is
// known to produce: a FeatureCollection, a single Feature, or a bare
// Geometry. Single features and bare geometries are wrapped into a
// one-feature collection so downstream code only ever sees collections.
// Empty and null payloads normalize to GeometryEmpty; anything else is
// GeometryUnrecognized and must never reach the render surface.
func NormalizeGeometry(raw []byte) NormalizedGeometry {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NormalizedGeometry{Kind: GeometryEmpty}
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return NormalizedGeometry{Kind: GeometryUnrecognized, Detail: err.Error()}
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return NormalizedGeometry{Kind: GeometryUnrecognized, Detail: err.Error()}
		}
		if len(fc.Features) == 0 {
			return NormalizedGeometry{Kind: GeometryEmpty}
		}
		return NormalizedGeometry{Kind: GeometryCollectionKind, Collection: fc}

	case "Feature":
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return NormalizedGeometry{Kind: GeometryUnrecognized, Detail: err.Error()}
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return NormalizedGeometry{Kind: GeometryCollectionKind, Collection: fc}

	case "Point", "MultiPoint", "LineString", "MultiLineString",
		"Polygon", "MultiPolygon", "GeometryCollection":
		var g geojson.Geometry
		if err := json.Unmarshal(raw, &g); err != nil {
			return NormalizedGeometry{Kind: GeometryUnrecognized, Detail: err.Error()}
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(g.Geometry()))
		return NormalizedGeometry{Kind: GeometryCollectionKind, Collection: fc}

	case "":
		return NormalizedGeometry{Kind: GeometryUnrecognized, Detail: "missing type member"}
	}

	return NormalizedGeometry{Kind: GeometryUnrecognized, Detail: "unknown type " + probe.Type}
}
