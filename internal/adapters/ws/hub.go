package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/routelab/routeboard/internal/core/ports"
)

// Hub tracks live sessions and fans server-wide events out to them:
// readiness transitions from the probe and blockage-change events from the
// broker. Events cross into each session through its Dispatch queue, never
// by touching session state directly.
type Hub struct {
	deps SessionDeps

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHub creates an empty hub.
func NewHub(deps SessionDeps) *Hub {
	return &Hub{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Handler returns the WebSocket connection handler. One session per
// connection, torn down when the read loop exits.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()

		s := NewSession(h.deps)
		h.add(s)
		defer h.remove(s)

		slog.Info("session connected", "session", s.ID, "remote", conn.RemoteAddr())
		s.Run(context.Background(), conn)
		slog.Info("session closed", "session", s.ID)
	}
}

func (h *Hub) add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.ID)
}

// snapshotSessions copies the registry so fanout never holds the lock while
// dispatching.
func (h *Hub) snapshotSessions() []*Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out
}

// OnReadinessChange forwards a probe transition to every session.
func (h *Hub) OnReadinessChange(ready, rising bool) {
	for _, s := range h.snapshotSessions() {
		s.SetReady(ready, rising)
	}
}

// StartBlockageFanout subscribes to broker blockage-change events and
// refreshes every session except the originator, which already refreshed
// itself. Returns the subscription stop function.
func (h *Hub) StartBlockageFanout(sub ports.EventSubscriber) (func(), error) {
	return sub.SubscribeBlockagesChanged(func(actor string) {
		for _, s := range h.snapshotSessions() {
			if s.ID == actor {
				continue
			}
			s.RefreshBlockages()
		}
	})
}
