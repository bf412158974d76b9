package usecases_test

import (
	"context"
	"testing"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/usecases"
)

// --- Mock RoutePlanner ---

type plannedPair struct {
	start, end domain.Point
}

type mockPlanner struct {
	calls []plannedPair
	err   error
}

func (m *mockPlanner) CalculateRoute(ctx context.Context, start, end domain.Point) error {
	m.calls = append(m.calls, plannedPair{start: start, end: end})
	return m.err
}

func newSelection(ready bool) (*usecases.SelectionService, *domain.SessionState, *mockPlanner, *mockSurface) {
	state := domain.NewSessionState()
	state.Ready = ready
	planner := &mockPlanner{}
	surface := &mockSurface{}
	svc := usecases.NewSelectionService(state, planner, surface, &mockNotifier{}, nil)
	return svc, state, planner, surface
}

func TestSelection_TwoClicksComputeOneRoute(t *testing.T) {
	svc, state, planner, _ := newSelection(true)
	ctx := context.Background()

	svc.ArmRouteSelection()
	if state.RoutePhase != domain.SelectingStart {
		t.Fatalf("expected selecting_start, got %s", state.RoutePhase)
	}

	svc.HandleClick(ctx, domain.Point{Lat: 1.30, Long: 103.80})
	if state.RoutePhase != domain.SelectingEnd {
		t.Fatalf("expected selecting_end, got %s", state.RoutePhase)
	}

	svc.HandleClick(ctx, domain.Point{Lat: 1.38, Long: 103.75})
	if state.RoutePhase != domain.RouteIdle {
		t.Fatalf("expected idle, got %s", state.RoutePhase)
	}

	if len(planner.calls) != 1 {
		t.Fatalf("expected exactly one calculation, got %d", len(planner.calls))
	}
	got := planner.calls[0]
	if got.start.Lat != 1.30 || got.start.Long != 103.80 {
		t.Errorf("wrong start point: %+v", got.start)
	}
	if got.end.Lat != 1.38 || got.end.Long != 103.75 {
		t.Errorf("wrong end point: %+v", got.end)
	}
	if state.BufferedStart != nil {
		t.Error("buffered start must be discarded when the axis returns to idle")
	}
}

func TestSelection_CancelDiscardsBufferedStart(t *testing.T) {
	svc, state, planner, _ := newSelection(true)
	ctx := context.Background()

	svc.ArmRouteSelection()
	svc.HandleClick(ctx, domain.Point{Lat: 1.30, Long: 103.80})
	svc.CancelRouteSelection()

	if state.RoutePhase != domain.RouteIdle || state.BufferedStart != nil {
		t.Fatal("cancel must return to idle and drop the buffer")
	}

	// Re-entry must not resurrect the old point.
	svc.ArmRouteSelection()
	svc.HandleClick(ctx, domain.Point{Lat: 1.31, Long: 103.81})
	svc.HandleClick(ctx, domain.Point{Lat: 1.39, Long: 103.76})

	if len(planner.calls) != 1 {
		t.Fatalf("expected one calculation, got %d", len(planner.calls))
	}
	if planner.calls[0].start.Lat != 1.31 {
		t.Errorf("old buffered start resurrected: %+v", planner.calls[0].start)
	}
}

func TestSelection_BufferedStartSurvivesUnrelatedEdits(t *testing.T) {
	svc, _, planner, _ := newSelection(true)
	ctx := context.Background()

	clicked := domain.Point{Lat: 1.30, Long: 103.80, Description: "clicked here"}
	svc.ArmRouteSelection()
	svc.HandleClick(ctx, clicked)

	// A form interaction rewrites its own copy; the buffer is unaffected.
	clicked.Description = "edited later"
	clicked.Lat = 99

	svc.HandleClick(ctx, domain.Point{Lat: 1.38, Long: 103.75})
	if len(planner.calls) != 1 {
		t.Fatalf("expected one calculation, got %d", len(planner.calls))
	}
	if planner.calls[0].start.Lat != 1.30 || planner.calls[0].start.Description != "clicked here" {
		t.Errorf("calculation must use the originally buffered start, got %+v", planner.calls[0].start)
	}
}

func TestSelection_NotReadySkipsCalculationButKeepsPoints(t *testing.T) {
	svc, state, planner, surface := newSelection(false)
	ctx := context.Background()

	svc.ArmRouteSelection()
	svc.HandleClick(ctx, domain.Point{Lat: 1.30, Long: 103.80})
	svc.HandleClick(ctx, domain.Point{Lat: 1.38, Long: 103.75})

	if len(planner.calls) != 0 {
		t.Error("no calculation may be issued while the collaborator is not ready")
	}
	if state.RoutePhase != domain.RouteIdle {
		t.Errorf("mode transition must still complete, got %s", state.RoutePhase)
	}
	if surface.start == nil || surface.end == nil {
		t.Error("both points must be stored for display")
	}
}

func TestSelection_BlockageAxisRetainsLocation(t *testing.T) {
	svc, state, _, _ := newSelection(true)
	ctx := context.Background()

	svc.ArmBlockageSelection()
	if state.BlockagePhase != domain.SelectingLocation {
		t.Fatalf("expected selecting_location, got %s", state.BlockagePhase)
	}

	svc.HandleClick(ctx, domain.Point{Lat: 1.35, Long: 103.82})
	if state.BlockagePhase != domain.BlockageIdle {
		t.Fatalf("axis must return to idle after resolution, got %s", state.BlockagePhase)
	}
	if state.PendingBlockage == nil || state.PendingBlockage.Lat != 1.35 {
		t.Fatal("resolved location must be retained after the axis resets")
	}

	svc.CancelBlockageSelection()
	if state.PendingBlockage == nil {
		t.Error("cancel must not discard the retained location")
	}

	svc.ResetBlockageLocation()
	if state.PendingBlockage != nil {
		t.Error("explicit reset must discard the location")
	}
}

func TestSelection_RouteAxisTakesClickPriority(t *testing.T) {
	svc, state, _, _ := newSelection(true)
	ctx := context.Background()

	svc.ArmBlockageSelection()
	svc.ArmRouteSelection()

	svc.HandleClick(ctx, domain.Point{Lat: 1.30, Long: 103.80})

	if state.BufferedStart == nil {
		t.Fatal("route axis should have consumed the click")
	}
	if state.PendingBlockage != nil {
		t.Error("one click must never resolve into both axes")
	}
	if state.BlockagePhase != domain.SelectingLocation {
		t.Error("blockage axis must be left untouched")
	}
}

func TestSelection_IdleClickPassesToObserver(t *testing.T) {
	state := domain.NewSessionState()
	var observed []domain.Point
	svc := usecases.NewSelectionService(state, &mockPlanner{}, &mockSurface{}, &mockNotifier{}, func(p domain.Point) {
		observed = append(observed, p)
	})

	svc.HandleClick(context.Background(), domain.Point{Lat: 1.3, Long: 103.8})

	if len(observed) != 1 {
		t.Fatalf("expected the observer to see the click, got %d", len(observed))
	}
	if state.BufferedStart != nil || state.PendingBlockage != nil {
		t.Error("an idle click has no selection semantics")
	}
}

func TestSelection_RearmDiscardsStaleBuffer(t *testing.T) {
	svc, state, _, _ := newSelection(true)
	ctx := context.Background()

	svc.ArmRouteSelection()
	svc.HandleClick(ctx, domain.Point{Lat: 1.30, Long: 103.80})
	svc.ArmRouteSelection()

	if state.RoutePhase != domain.SelectingStart {
		t.Errorf("re-arming must restart selection, got %s", state.RoutePhase)
	}
	if state.BufferedStart != nil {
		t.Error("re-arming must drop the previous buffer")
	}
}
