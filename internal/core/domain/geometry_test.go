package domain

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestNormalizeGeometry_FeatureCollection(t *testing.T) {
	raw := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[103.8, 1.35], [103.81, 1.36]]}, "properties": {"name": "leg"}}
		]
	}`)

	got := NormalizeGeometry(raw)
	if got.Kind != GeometryCollectionKind {
		t.Fatalf("expected collection, got kind %v (%s)", got.Kind, got.Detail)
	}
	if len(got.Collection.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(got.Collection.Features))
	}
}

func TestNormalizeGeometry_SingleFeatureIsWrapped(t *testing.T) {
	single := []byte(`{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[103.8, 1.35], [103.81, 1.36]]}, "properties": {}}`)
	wrapped := []byte(`{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[103.8, 1.35], [103.81, 1.36]]}, "properties": {}}]}`)

	a := NormalizeGeometry(single)
	b := NormalizeGeometry(wrapped)
	if a.Kind != GeometryCollectionKind || b.Kind != GeometryCollectionKind {
		t.Fatalf("expected both collections, got %v / %v", a.Kind, b.Kind)
	}
	if len(a.Collection.Features) != len(b.Collection.Features) {
		t.Fatalf("feature counts differ: %d vs %d", len(a.Collection.Features), len(b.Collection.Features))
	}
	if !orb.Equal(a.Collection.Features[0].Geometry, b.Collection.Features[0].Geometry) {
		t.Error("wrapped single feature should carry identical geometry")
	}
}

func TestNormalizeGeometry_BareGeometry(t *testing.T) {
	raw := []byte(`{"type": "LineString", "coordinates": [[103.8, 1.35], [103.81, 1.36]]}`)

	got := NormalizeGeometry(raw)
	if got.Kind != GeometryCollectionKind {
		t.Fatalf("expected collection, got kind %v (%s)", got.Kind, got.Detail)
	}
	if len(got.Collection.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(got.Collection.Features))
	}
	if got.Collection.Features[0].Geometry.GeoJSONType() != "LineString" {
		t.Errorf("expected LineString, got %s", got.Collection.Features[0].Geometry.GeoJSONType())
	}
}

func TestNormalizeGeometry_Empty(t *testing.T) {
	cases := map[string][]byte{
		"nil":              nil,
		"null":             []byte("null"),
		"whitespace":       []byte("  \n"),
		"empty collection": []byte(`{"type": "FeatureCollection", "features": []}`),
	}
	for name, raw := range cases {
		if got := NormalizeGeometry(raw); got.Kind != GeometryEmpty {
			t.Errorf("%s: expected empty, got kind %v", name, got.Kind)
		}
	}
}

func TestNormalizeGeometry_Unrecognized(t *testing.T) {
	cases := map[string][]byte{
		"not json":     []byte("<html>"),
		"no type":      []byte(`{"features": []}`),
		"unknown type": []byte(`{"type": "Banana"}`),
		"bad feature":  []byte(`{"type": "Feature", "geometry": "nope"}`),
	}
	for name, raw := range cases {
		got := NormalizeGeometry(raw)
		if got.Kind != GeometryUnrecognized {
			t.Errorf("%s: expected unrecognized, got kind %v", name, got.Kind)
		}
		if got.Detail == "" {
			t.Errorf("%s: expected a detail message", name)
		}
	}
}

func TestBlockageList(t *testing.T) {
	raw := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [103.8, 1.35]}, "properties": {"name": "Orchard closure", "description": "roadworks"}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [103.9, 1.32]}, "properties": {}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [103.7, 1.31]}, "properties": {"description": "unnamed incident"}}
		]
	}`)

	norm := NormalizeGeometry(raw)
	if norm.Kind != GeometryCollectionKind {
		t.Fatalf("setup: expected collection, got %v", norm.Kind)
	}

	list := BlockageList(norm.Collection)
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[0].Name != "Orchard closure" || list[0].Description != "roadworks" {
		t.Errorf("unexpected first entry: %+v", list[0])
	}
	if list[1].Description != "unnamed incident" {
		t.Errorf("unexpected second entry: %+v", list[1])
	}
}

func TestBlockageValidate(t *testing.T) {
	good := Blockage{Name: "closure", Radius: 200, Point: Point{Long: 103.8, Lat: 1.35}}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := (Blockage{Radius: 200, Point: good.Point}).Validate(); err == nil {
		t.Error("expected error for empty name")
	}
	if err := (Blockage{Name: "x", Radius: 0, Point: good.Point}).Validate(); err == nil {
		t.Error("expected error for zero radius")
	}
}
