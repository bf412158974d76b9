package domain

// OverlaySlot identifies one of the three independently managed map overlays.
// Setting a slot replaces its previous payload atomically from the render
// surface's point of view; clearing one slot never affects another.
type OverlaySlot string

const (
	SlotRoute     OverlaySlot = "route"
	SlotBlockages OverlaySlot = "blockages"
	SlotRoadType  OverlaySlot = "road_type"
)

// Slots lists every overlay slot in render order.
func Slots() []OverlaySlot {
	return []OverlaySlot{SlotRoute, SlotBlockages, SlotRoadType}
}

// Refits reports whether an assignment to this slot re-frames the viewport.
// Blockage updates must not fight the user's current pan/zoom.
func (s OverlaySlot) Refits() bool {
	return s == SlotRoute || s == SlotRoadType
}
