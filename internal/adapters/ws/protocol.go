// Package ws carries map sessions over WebSocket. The browser is a thin
// render surface: it forwards raw interaction events and applies layer
// commands; every decision about what a click means lives server-side.
package ws

import (
	"encoding/json"

	"github.com/routelab/routeboard/internal/core/domain"
)

// clientFrame is one inbound event from the browser.
type clientFrame struct {
	Type string `json:"type"`

	// click
	Point *domain.Point `json:"point,omitempty"`

	// set_travel
	Travel string `json:"travel,omitempty"`

	// calculate_route (manual form entry)
	Start *domain.Point `json:"start,omitempty"`
	End   *domain.Point `json:"end,omitempty"`

	// add_blockage
	Blockage *domain.Blockage `json:"blockage,omitempty"`

	// delete_blockage, view_road_type
	Name string `json:"name,omitempty"`

	// search
	Query string `json:"query,omitempty"`
}

// serverFrame is one outbound command to the browser.
type serverFrame struct {
	Type string `json:"type"`

	// set_overlay / remove_overlay
	Slot    string          `json:"slot,omitempty"`
	LayerID string          `json:"layerId,omitempty"`
	GeoJSON json.RawMessage `json:"geojson,omitempty"`
	Fit     bool            `json:"fit,omitempty"`

	// set_markers
	Start *domain.Point `json:"start,omitempty"`
	End   *domain.Point `json:"end,omitempty"`

	// notice
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`

	// state snapshot
	State *stateFrame `json:"state,omitempty"`

	// search_results
	Query   string                 `json:"query,omitempty"`
	Results []domain.GeocodeResult `json:"results,omitempty"`

	// road_types
	RoadTypes []string `json:"roadTypes,omitempty"`
}

// stateFrame mirrors the session state record for the client.
type stateFrame struct {
	Ready         bool              `json:"ready"`
	Busy          bool              `json:"busy"`
	RoutePhase    string            `json:"routePhase"`
	BlockagePhase string            `json:"blockagePhase"`
	Travel        domain.TravelType `json:"travel"`
	Pending       *domain.Point     `json:"pendingBlockage,omitempty"`
}

func snapshot(s *domain.SessionState) *stateFrame {
	return &stateFrame{
		Ready:         s.Ready,
		Busy:          s.Busy,
		RoutePhase:    string(s.RoutePhase),
		BlockagePhase: string(s.BlockagePhase),
		Travel:        s.Travel,
		Pending:       s.PendingBlockage,
	}
}
