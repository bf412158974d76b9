package ws

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/routelab/routeboard/internal/core/domain"
)

func lineFC() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{{103.80, 1.30}, {103.75, 1.38}}))
	return fc
}

func collect() (*Surface, *[]serverFrame) {
	var frames []serverFrame
	s := NewSurface(func(f serverFrame) { frames = append(frames, f) })
	return s, &frames
}

func TestSetOverlayFirstTimeAddsWithoutRemove(t *testing.T) {
	s, frames := collect()
	s.SetOverlay(domain.SlotRoute, lineFC())

	if len(*frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(*frames))
	}
	f := (*frames)[0]
	if f.Type != "set_overlay" || f.Slot != "route" {
		t.Errorf("frame = %+v", f)
	}
	if f.LayerID == "" {
		t.Error("layer id must be set")
	}
	if !f.Fit {
		t.Error("route slot must refit the view")
	}
}

func TestSetOverlayReplacementRemovesExactlyThePreviousLayer(t *testing.T) {
	s, frames := collect()
	s.SetOverlay(domain.SlotRoute, lineFC())
	firstID := (*frames)[0].LayerID

	s.SetOverlay(domain.SlotRoute, lineFC())
	if len(*frames) != 3 {
		t.Fatalf("frames = %d, want 3 (add, remove, add)", len(*frames))
	}
	remove := (*frames)[1]
	if remove.Type != "remove_overlay" || remove.LayerID != firstID {
		t.Errorf("second frame = %+v, want removal of %s", remove, firstID)
	}
	add := (*frames)[2]
	if add.Type != "set_overlay" || add.LayerID == firstID {
		t.Errorf("replacement layer id must differ from %s, got %+v", firstID, add)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	s, frames := collect()
	s.SetOverlay(domain.SlotRoute, lineFC())
	s.SetOverlay(domain.SlotBlockages, lineFC())
	s.SetOverlay(domain.SlotRoute, lineFC())

	remove := (*frames)[2]
	if remove.Type != "remove_overlay" || remove.Slot != "route" {
		t.Errorf("replacing route must not touch blockages, got %+v", remove)
	}
}

func TestBlockagesSlotNeverRefits(t *testing.T) {
	s, frames := collect()
	s.SetOverlay(domain.SlotBlockages, lineFC())
	if (*frames)[0].Fit {
		t.Error("blockage refresh must not move the viewport")
	}
}

func TestClearOverlayOnEmptySlotSendsNothing(t *testing.T) {
	s, frames := collect()
	s.ClearOverlay(domain.SlotRoadType)
	if len(*frames) != 0 {
		t.Errorf("frames = %d, want 0", len(*frames))
	}
}

func TestSetOverlayNilClearsOnly(t *testing.T) {
	s, frames := collect()
	s.SetOverlay(domain.SlotRoute, lineFC())
	s.SetOverlay(domain.SlotRoute, nil)

	last := (*frames)[len(*frames)-1]
	if last.Type != "remove_overlay" {
		t.Errorf("nil geometry must clear the slot, got %+v", last)
	}
	// Slot is now empty; a further clear is a no-op.
	n := len(*frames)
	s.ClearOverlay(domain.SlotRoute)
	if len(*frames) != n {
		t.Error("clearing an already empty slot must send nothing")
	}
}

func TestNotifierLevels(t *testing.T) {
	var frames []serverFrame
	n := NewFrameNotifier(func(f serverFrame) { frames = append(frames, f) })
	n.Info("a")
	n.Warn("b")
	n.Error("c")

	want := []string{"info", "warn", "error"}
	if len(frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(frames))
	}
	for i, f := range frames {
		if f.Type != "notice" || f.Level != want[i] {
			t.Errorf("frame %d = %+v, want level %s", i, f, want[i])
		}
	}
}
