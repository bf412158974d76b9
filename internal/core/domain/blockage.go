package domain

import "github.com/paulmach/orb/geojson"

// Blockage is a circular road obstruction. The name is its identity; the
// routing service is the source of truth and records are never cached across
// a session beyond the current render pass.
type Blockage struct {
	Point       Point   `json:"point"`
	Radius      float64 `json:"radius"` // meters
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// Validate checks the locally enforceable fields before any remote call.
func (b Blockage) Validate() error {
	if b.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if b.Radius <= 0 {
		return &ValidationError{Field: "radius", Reason: "must be positive"}
	}
	return b.Point.Validate()
}

// BlockageInfo is the list-view projection of a blockage feature.
type BlockageInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BlockageList extracts name/description pairs from a blockage feature
// collection, skipping features that carry neither.
func BlockageList(fc *geojson.FeatureCollection) []BlockageInfo {
	if fc == nil {
		return nil
	}
	out := make([]BlockageInfo, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		name, _ := f.Properties["name"].(string)
		desc, _ := f.Properties["description"].(string)
		if name == "" && desc == "" {
			continue
		}
		out = append(out, BlockageInfo{Name: name, Description: desc})
	}
	return out
}
