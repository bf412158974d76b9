package ports

import (
	"github.com/paulmach/orb/geojson"

	"github.com/routelab/routeboard/internal/core/domain"
)

// MapSurface is a one-way sink onto the rendered map. Implementations own
// the reconciliation contract: setting a slot removes exactly the previously
// rendered layer for that slot before adding the new one, re-frames the view
// for slots that refit, and must never panic on malformed geometry (log it,
// render nothing for that slot).
type MapSurface interface {
	SetOverlay(slot domain.OverlaySlot, fc *geojson.FeatureCollection)
	ClearOverlay(slot domain.OverlaySlot)
	SetMarkers(start, end *domain.Point)
	ClearMarkers()
}

// Notifier surfaces user-visible notices. Every remote-call failure in the
// coordinator funnels to exactly one of these calls.
type Notifier interface {
	Info(message string)
	Warn(message string)
	Error(message string)
}
