package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/ports"
	"github.com/routelab/routeboard/internal/core/usecases"
	"github.com/routelab/routeboard/internal/pkg/metrics"
)

const (
	searchDebounce = 300 * time.Millisecond
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	outBuffer      = 64
	eventBuffer    = 64
)

// Session is one connected map client. All state mutation happens on the
// session's event goroutine: inbound frames, readiness transitions, and
// cross-session refreshes are all funneled through the events channel, so
// the selection and overlay services run without locks.
type Session struct {
	ID string

	state     *domain.SessionState
	selection *usecases.SelectionService
	overlay   *usecases.OverlayService
	search    *usecases.SearchService

	events chan func(ctx context.Context)
	out    chan serverFrame
	done   chan struct{}

	searchTimer *time.Timer
}

// SessionDeps carries the collaborators a session is built from.
type SessionDeps struct {
	Routing RoutingDeps
	Search  *usecases.SearchService
}

// RoutingDeps groups what the overlay coordinator needs.
type RoutingDeps struct {
	Service ports.RoutingService
	Events  ports.EventPublisher
	History ports.RouteHistoryRepository
	Cache   ports.CacheService
	Ready   func() bool
}

// NewSession builds a session and its service graph. The surface and
// notifier write into the outbound queue; frames are dropped if the client
// cannot drain them fast enough, which only ever loses rendering commands
// to a connection that is already dying.
func NewSession(deps SessionDeps) *Session {
	s := &Session{
		ID:     utils.UUIDv4(),
		state:  domain.NewSessionState(),
		events: make(chan func(ctx context.Context), eventBuffer),
		out:    make(chan serverFrame, outBuffer),
		done:   make(chan struct{}),
		search: deps.Search,
	}

	surface := NewSurface(s.send)
	notify := NewFrameNotifier(s.send)

	s.overlay = usecases.NewOverlayService(s.ID, s.state, deps.Routing.Service, surface, notify).
		WithEvents(deps.Routing.Events).
		WithHistory(deps.Routing.History).
		WithCache(deps.Routing.Cache)
	s.selection = usecases.NewSelectionService(s.state, s.overlay, surface, notify, nil)

	if deps.Routing.Ready != nil {
		s.state.Ready = deps.Routing.Ready()
	}
	return s
}

// Dispatch queues fn onto the session's event goroutine. Safe to call from
// any goroutine; drops the event if the session is gone.
func (s *Session) Dispatch(fn func(ctx context.Context)) {
	select {
	case s.events <- fn:
	case <-s.done:
	}
}

// SetReady records a readiness transition. rising fires the load cascade.
func (s *Session) SetReady(ready, rising bool) {
	s.Dispatch(func(ctx context.Context) {
		s.overlay.SetReady(ready)
		if rising {
			s.overlay.OnReadinessRisingEdge(ctx)
		}
		s.pushState()
	})
}

// RefreshBlockages re-pulls the blockage overlay, used when another session
// changed the shared set.
func (s *Session) RefreshBlockages() {
	s.Dispatch(func(ctx context.Context) {
		s.overlay.RefreshBlockages(ctx)
	})
}

// send queues one outbound frame without blocking. A full queue means the
// client is not draining; dropping render commands to a dying connection is
// preferable to wedging the event goroutine.
func (s *Session) send(f serverFrame) {
	select {
	case s.out <- f:
	default:
		slog.Warn("outbound queue full, dropping frame", "session", s.ID, "type", f.Type)
	}
}

func (s *Session) pushState() {
	s.send(serverFrame{Type: "state", State: snapshot(s.state)})
}

// Run services the connection until it closes. It starts the writer and
// event goroutines, then reads inbound frames on the calling goroutine.
func (s *Session) Run(ctx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()
	defer close(s.done)

	go s.writeLoop(conn, cancel)
	go s.eventLoop(ctx)

	s.pushState()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.send(serverFrame{Type: "notice", Level: "error", Message: "invalid frame"})
			continue
		}
		s.Dispatch(func(ctx context.Context) {
			s.handle(ctx, frame)
		})
	}
}

func (s *Session) writeLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case f := <-s.out:
			data, err := json.Marshal(f)
			if err != nil {
				slog.Warn("frame not serializable", "session", s.ID, "type", f.Type)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) eventLoop(ctx context.Context) {
	for {
		select {
		case fn := <-s.events:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// handle interprets one inbound frame. Runs on the event goroutine.
func (s *Session) handle(ctx context.Context, f clientFrame) {
	switch f.Type {
	case "click":
		if f.Point == nil {
			return
		}
		s.selection.HandleClick(ctx, *f.Point)
		s.pushState()

	case "arm_route":
		s.selection.ArmRouteSelection()
		s.pushState()

	case "cancel_route":
		s.selection.CancelRouteSelection()
		s.pushState()

	case "arm_blockage":
		s.selection.ArmBlockageSelection()
		s.pushState()

	case "cancel_blockage":
		s.selection.CancelBlockageSelection()
		s.pushState()

	case "reset_blockage_location":
		s.selection.ResetBlockageLocation()
		s.pushState()

	case "calculate_route":
		if f.Start == nil || f.End == nil {
			s.send(serverFrame{Type: "notice", Level: "error", Message: "both points are required"})
			return
		}
		_ = s.overlay.CalculateRoute(ctx, *f.Start, *f.End)
		s.pushState()

	case "set_travel":
		_ = s.overlay.ChangeTravelProfile(ctx, domain.TravelType(f.Travel))
		s.pushState()

	case "add_blockage":
		if f.Blockage == nil {
			s.send(serverFrame{Type: "notice", Level: "error", Message: "blockage form is required"})
			return
		}
		_ = s.overlay.AddBlockage(ctx, *f.Blockage)
		s.pushState()

	case "delete_blockage":
		_ = s.overlay.DeleteBlockage(ctx, f.Name)
		s.pushState()

	case "view_road_type":
		_ = s.overlay.ViewRoadType(ctx, f.Name)

	case "clear_road_type":
		s.overlay.ClearRoadTypeHighlight()

	case "clear_route":
		s.overlay.ClearRoute()
		s.pushState()

	case "refresh_blockages":
		s.overlay.RefreshBlockages(ctx)

	case "road_types":
		s.send(serverFrame{Type: "road_types", RoadTypes: s.overlay.KnownRoadTypes()})

	case "search":
		s.debounceSearch(f.Query)

	default:
		s.send(serverFrame{Type: "notice", Level: "error", Message: "unknown frame type: " + f.Type})
	}
}

// debounceSearch delays the geocode call until the user pauses typing.
// Only the last query within the window is sent.
func (s *Session) debounceSearch(query string) {
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.searchTimer = time.AfterFunc(searchDebounce, func() {
		s.Dispatch(func(ctx context.Context) {
			s.runSearch(ctx, query)
		})
	})
}

func (s *Session) runSearch(ctx context.Context, query string) {
	if s.search == nil {
		return
	}
	results, err := s.search.Search(ctx, query)
	if err != nil {
		slog.Warn("search failed", "session", s.ID, "error", err)
		s.send(serverFrame{Type: "notice", Level: "error", Message: "Search is unavailable right now."})
		return
	}
	s.send(serverFrame{Type: "search_results", Query: query, Results: results})
}
