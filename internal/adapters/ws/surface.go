package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb/geojson"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/ports"
	"github.com/routelab/routeboard/internal/pkg/metrics"
)

// Surface reconciles overlay slots onto the client map. Each slot holds at
// most one layer; setting a slot removes the previously rendered layer
// before adding the new one, so a stale route can never linger behind a
// fresh one. Layer IDs are unique per replacement, which lets the client
// treat remove and add as independent idempotent commands.
type Surface struct {
	send func(serverFrame)

	seq    int
	layers map[domain.OverlaySlot]string
}

// NewSurface creates a surface writing frames through send. send must be
// safe to call from the session's event goroutine.
func NewSurface(send func(serverFrame)) *Surface {
	return &Surface{
		send:   send,
		layers: make(map[domain.OverlaySlot]string),
	}
}

// SetOverlay replaces the slot's layer with fc and re-frames the view for
// slots that refit. Geometry that cannot be serialized is logged and the
// slot is left cleared rather than letting the client render garbage.
func (s *Surface) SetOverlay(slot domain.OverlaySlot, fc *geojson.FeatureCollection) {
	s.removeCurrent(slot)
	if fc == nil {
		return
	}

	data, err := json.Marshal(fc)
	if err != nil {
		slog.Warn("overlay geometry not serializable, slot left empty", "slot", slot, "error", err)
		return
	}

	s.seq++
	id := fmt.Sprintf("%s-%d", slot, s.seq)
	s.layers[slot] = id
	s.send(serverFrame{
		Type:    "set_overlay",
		Slot:    string(slot),
		LayerID: id,
		GeoJSON: data,
		Fit:     slot.Refits(),
	})
	metrics.OverlayUpdates.WithLabelValues(string(slot)).Inc()
}

// ClearOverlay removes the slot's layer if one is rendered.
func (s *Surface) ClearOverlay(slot domain.OverlaySlot) {
	s.removeCurrent(slot)
}

func (s *Surface) removeCurrent(slot domain.OverlaySlot) {
	id, ok := s.layers[slot]
	if !ok {
		return
	}
	delete(s.layers, slot)
	s.send(serverFrame{Type: "remove_overlay", Slot: string(slot), LayerID: id})
}

// SetMarkers places the start and end point markers.
func (s *Surface) SetMarkers(start, end *domain.Point) {
	s.send(serverFrame{Type: "set_markers", Start: start, End: end})
}

// ClearMarkers removes both point markers.
func (s *Surface) ClearMarkers() {
	s.send(serverFrame{Type: "clear_markers"})
}

var _ ports.MapSurface = (*Surface)(nil)

// FrameNotifier sends user-visible notices as frames on the same
// connection the overlays travel on.
type FrameNotifier struct {
	send func(serverFrame)
}

func NewFrameNotifier(send func(serverFrame)) *FrameNotifier {
	return &FrameNotifier{send: send}
}

func (n *FrameNotifier) Info(message string) { n.notice("info", message) }

func (n *FrameNotifier) Warn(message string) { n.notice("warn", message) }

func (n *FrameNotifier) Error(message string) { n.notice("error", message) }

func (n *FrameNotifier) notice(level, message string) {
	n.send(serverFrame{Type: "notice", Level: level, Message: message})
}

var _ ports.Notifier = (*FrameNotifier)(nil)
