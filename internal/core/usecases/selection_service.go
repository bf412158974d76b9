package usecases

import (
	"context"
	"log/slog"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/ports"
)

// RoutePlanner consumes a resolved start/end pair. Satisfied by
// *OverlayService; narrowed to an interface so the selection logic can be
// tested without the remote collaborator.
type RoutePlanner interface {
	CalculateRoute(ctx context.Context, start, end domain.Point) error
}

// ClickObserver receives clicks that no selection axis consumed.
type ClickObserver func(p domain.Point)

// SelectionService owns the interaction-mode state machine: what a map click
// means at any moment. It mutates the session state record and hands resolved
// point pairs to the planner. All methods must be called from the session's
// event goroutine; the service does no locking of its own.
type SelectionService struct {
	state    *domain.SessionState
	planner  RoutePlanner
	surface  ports.MapSurface
	notify   ports.Notifier
	observer ClickObserver
}

// NewSelectionService creates a new SelectionService. observer may be nil.
func NewSelectionService(state *domain.SessionState, planner RoutePlanner, surface ports.MapSurface, notify ports.Notifier, observer ClickObserver) *SelectionService {
	return &SelectionService{
		state:    state,
		planner:  planner,
		surface:  surface,
		notify:   notify,
		observer: observer,
	}
}

// ArmRouteSelection enters selecting_start. Arming while already armed
// restarts the selection and discards any buffered start point.
func (s *SelectionService) ArmRouteSelection() {
	s.state.BufferedStart = nil
	s.state.RoutePhase = domain.SelectingStart
}

// CancelRouteSelection returns the route axis to idle from any phase,
// discarding the buffered start point.
func (s *SelectionService) CancelRouteSelection() {
	s.state.BufferedStart = nil
	s.state.RoutePhase = domain.RouteIdle
}

// ArmBlockageSelection enters selecting_location on the blockage axis.
func (s *SelectionService) ArmBlockageSelection() {
	s.state.BlockagePhase = domain.SelectingLocation
}

// CancelBlockageSelection returns the blockage axis to idle. Unlike the
// route axis, a previously resolved location is retained for the form.
func (s *SelectionService) CancelBlockageSelection() {
	s.state.BlockagePhase = domain.BlockageIdle
}

// ResetBlockageLocation discards the retained blockage location.
func (s *SelectionService) ResetBlockageLocation() {
	s.state.PendingBlockage = nil
}

// HandleClick interprets a map click against the current mode. A click is
// consumed by at most one axis: the route axis takes priority, then the
// blockage axis, otherwise the click passes to the optional observer with no
// selection semantics.
func (s *SelectionService) HandleClick(ctx context.Context, p domain.Point) {
	if err := p.Validate(); err != nil {
		slog.Warn("discarding click with bad coordinates", "error", err)
		return
	}

	switch s.state.RoutePhase {
	case domain.SelectingStart:
		start := p
		s.state.BufferedStart = &start
		s.state.RoutePhase = domain.SelectingEnd
		return

	case domain.SelectingEnd:
		if s.state.BufferedStart == nil {
			// selecting_end is only entered after a start resolution, so a
			// missing buffer means the state record was tampered with.
			s.state.RoutePhase = domain.RouteIdle
			return
		}
		start := *s.state.BufferedStart
		end := p
		s.state.BufferedStart = nil
		s.state.RoutePhase = domain.RouteIdle

		if !s.state.Ready {
			// Calculation is skipped, not queued: the user re-triggers it
			// manually once the collaborator comes up. The points are still
			// shown so the selection is not lost.
			s.state.StartMarker, s.state.EndMarker = &start, &end
			s.surface.SetMarkers(&start, &end)
			s.notify.Info("Routing service is still starting up; points saved, calculate manually once ready.")
			return
		}

		// Coordinator surfaces its own failures.
		_ = s.planner.CalculateRoute(ctx, start, end)
		return
	}

	if s.state.BlockagePhase == domain.SelectingLocation {
		loc := p
		s.state.PendingBlockage = &loc
		s.state.BlockagePhase = domain.BlockageIdle
		return
	}

	if s.observer != nil {
		s.observer(p)
	}
}
