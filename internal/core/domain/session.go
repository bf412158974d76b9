package domain

// RoutePhase is the route-selection axis of the interaction mode.
type RoutePhase string

const (
	RouteIdle      RoutePhase = "idle"
	SelectingStart RoutePhase = "selecting_start"
	SelectingEnd   RoutePhase = "selecting_end"
)

// BlockagePhase is the blockage-selection axis of the interaction mode.
// The two axes are modeled independently; the selection service enforces
// that only one is non-idle at a time.
type BlockagePhase string

const (
	BlockageIdle      BlockagePhase = "idle"
	SelectingLocation BlockagePhase = "selecting_location"
)

// SessionState is the explicit per-session state record. It replaces any
// global mutable UI state: readiness and busy flags, both mode axes, the
// buffered start point, the retained blockage location, the two point
// markers, and the active travel type all live here and nowhere else.
type SessionState struct {
	Ready bool
	Busy  bool

	RoutePhase    RoutePhase
	BlockagePhase BlockagePhase

	// BufferedStart is set while the route axis waits for the end click.
	// Cleared whenever the route axis returns to idle by any path.
	BufferedStart *Point

	// PendingBlockage is retained after the blockage axis resets, because
	// the consuming form needs the value; cleared on successful add or
	// explicit reset.
	PendingBlockage *Point

	// StartMarker and EndMarker are the last points handed to the render
	// surface as markers.
	StartMarker *Point
	EndMarker   *Point

	Travel TravelType
}

// NewSessionState returns the well-defined initial state: both axes idle,
// no buffered points, busy and ready false, car travel.
func NewSessionState() *SessionState {
	return &SessionState{
		RoutePhase:    RouteIdle,
		BlockagePhase: BlockageIdle,
		Travel:        TravelCar,
	}
}
