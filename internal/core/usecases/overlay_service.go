package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/ports"
)

const roadTypeCacheTTL = 10 * time.Minute

// OverlayService coordinates remote routing calls and reconciles their
// results into the three overlay slots. One instance per session; methods
// must be called from the session's event goroutine. The busy flag is
// advisory: actions invoked while busy are refused at the entry point, not
// queued. Every remote failure funnels to a single notifier call and the
// busy flag is always released, so the session never wedges after one
// failed call.
type OverlayService struct {
	state   *domain.SessionState
	routing ports.RoutingService
	surface ports.MapSurface
	notify  ports.Notifier

	// Optional collaborators; any of these may be nil.
	events  ports.EventPublisher
	history ports.RouteHistoryRepository
	cache   ports.CacheService

	sessionID string

	// knownRoadTypes is the catalog reported by the collaborator, loaded on
	// the readiness rising edge. Restriction calls never send a name absent
	// from it.
	knownRoadTypes []string
}

// NewOverlayService creates a coordinator bound to one session.
func NewOverlayService(sessionID string, state *domain.SessionState, routing ports.RoutingService, surface ports.MapSurface, notify ports.Notifier) *OverlayService {
	return &OverlayService{
		sessionID: sessionID,
		state:     state,
		routing:   routing,
		surface:   surface,
		notify:    notify,
	}
}

// WithEvents attaches a cross-session event publisher.
func (s *OverlayService) WithEvents(pub ports.EventPublisher) *OverlayService {
	s.events = pub
	return s
}

// WithHistory attaches a route-computation audit repository.
func (s *OverlayService) WithHistory(repo ports.RouteHistoryRepository) *OverlayService {
	s.history = repo
	return s
}

// WithCache attaches a cache for road-type geometry lookups.
func (s *OverlayService) WithCache(cache ports.CacheService) *OverlayService {
	s.cache = cache
	return s
}

// acquire flips the busy flag for one remote-triggering operation. It
// returns false when another operation is still in flight.
func (s *OverlayService) acquire() bool {
	if s.state.Busy {
		s.notify.Warn("Another request is still in progress.")
		return false
	}
	s.state.Busy = true
	return true
}

func (s *OverlayService) release() {
	s.state.Busy = false
}

// CalculateRoute asks the collaborator for a path and replaces the route
// slot on success. Works identically for freshly clicked points and
// manually entered form points. On failure the route slot is left
// untouched: a previously displayed route stays current.
func (s *OverlayService) CalculateRoute(ctx context.Context, start, end domain.Point) error {
	if err := start.Validate(); err != nil {
		s.notify.Error("Start point is invalid: " + err.Error())
		return err
	}
	if err := end.Validate(); err != nil {
		s.notify.Error("End point is invalid: " + err.Error())
		return err
	}
	if !s.acquire() {
		return domain.ErrBusy
	}
	defer s.release()

	began := time.Now()
	fc, err := s.routing.Route(ctx, domain.RouteRequest{StartPt: start, EndPt: end})
	s.recordHistory(ctx, start, end, fc, err, began)
	if err != nil {
		s.notify.Error("Failed to calculate route. Please check your points and try again.")
		return err
	}

	s.state.StartMarker, s.state.EndMarker = &start, &end
	s.surface.SetMarkers(&start, &end)
	s.surface.SetOverlay(domain.SlotRoute, fc)
	return nil
}

func (s *OverlayService) recordHistory(ctx context.Context, start, end domain.Point, fc *geojson.FeatureCollection, callErr error, began time.Time) {
	if s.history == nil {
		return
	}
	entry := &domain.RouteHistoryEntry{
		SessionID:   s.sessionID,
		Start:       start,
		End:         end,
		Travel:      s.state.Travel,
		Succeeded:   callErr == nil,
		Duration:    time.Since(began),
		RequestedAt: began,
	}
	if fc != nil {
		entry.Features = len(fc.Features)
	}
	if err := s.history.Record(ctx, entry); err != nil {
		slog.Warn("route history write failed", "error", err)
	}
}

// ChangeTravelProfile switches the active travel type. The route slot is
// cleared unconditionally: a route computed under another profile must never
// be shown as current. The collaborator's valid road types are then
// restricted to the profile's configured set intersected with the catalog
// it reports as known.
func (s *OverlayService) ChangeTravelProfile(ctx context.Context, t domain.TravelType) error {
	if !t.Valid() {
		err := &domain.ValidationError{Field: "travel", Reason: "unknown travel type " + string(t)}
		s.notify.Error(err.Error())
		return err
	}

	s.state.Travel = t
	s.surface.ClearOverlay(domain.SlotRoute)

	if !s.acquire() {
		return domain.ErrBusy
	}
	defer s.release()

	return s.applyProfileRestriction(ctx, t)
}

// applyProfileRestriction sends the allowed road-type set for t. Callers
// hold the busy flag.
func (s *OverlayService) applyProfileRestriction(ctx context.Context, t domain.TravelType) error {
	if len(s.knownRoadTypes) == 0 {
		if err := s.loadRoadTypeCatalog(ctx); err != nil {
			s.notify.Error("Failed to change road types. Please try again.")
			return err
		}
	}

	allowed := intersect(t.RoadTypes(), s.knownRoadTypes)
	if len(allowed) == 0 {
		slog.Warn("no configured road types are known to the collaborator", "travel", t)
		return nil
	}

	if _, err := s.routing.SetValidRoadTypes(ctx, allowed); err != nil {
		s.notify.Error("Failed to change road types. Please try again.")
		return err
	}
	return nil
}

func (s *OverlayService) loadRoadTypeCatalog(ctx context.Context) error {
	types, err := s.routing.AllRoadTypes(ctx)
	if err != nil {
		return err
	}
	s.knownRoadTypes = types
	return nil
}

// KnownRoadTypes returns the cached catalog for form rendering.
func (s *OverlayService) KnownRoadTypes() []string {
	return s.knownRoadTypes
}

func intersect(want, known []string) []string {
	set := make(map[string]struct{}, len(known))
	for _, k := range known {
		set[k] = struct{}{}
	}
	var out []string
	for _, w := range want {
		if _, ok := set[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

// AddBlockage validates locally, registers the blockage remotely, and pulls
// the authoritative set. The record is never inserted optimistically.
func (s *OverlayService) AddBlockage(ctx context.Context, b domain.Blockage) error {
	// Validation failures mean the call never started: busy stays false.
	if err := b.Validate(); err != nil {
		s.notify.Error("Cannot add blockage: " + err.Error())
		return err
	}
	if !s.acquire() {
		return domain.ErrBusy
	}
	defer s.release()

	if err := s.routing.AddBlockage(ctx, b); err != nil {
		s.notify.Error("Failed to add blockage. Please try again.")
		return err
	}

	s.state.PendingBlockage = nil
	s.notify.Info("Blockage added successfully.")
	s.refreshBlockages(ctx)
	s.publishBlockagesChanged(ctx)
	return nil
}

// DeleteBlockage removes a blockage by name. A definitive 4xx/5xx is a real
// failure surfaced to the user; losing the response entirely is treated as
// likely-success because the deletion may have been applied server-side. In
// every branch the blockage set is re-pulled exactly once.
func (s *OverlayService) DeleteBlockage(ctx context.Context, name string) error {
	if name == "" {
		err := &domain.ValidationError{Field: "name", Reason: "must not be empty"}
		s.notify.Error(err.Error())
		return err
	}
	if !s.acquire() {
		return domain.ErrBusy
	}
	defer s.release()

	err := s.routing.DeleteBlockage(ctx, name)
	switch {
	case err == nil:
	case domain.IsAmbiguousOutcome(err):
		slog.Warn("blockage delete got no response, assuming it was applied", "name", name, "error", err)
		err = nil
	default:
		s.notify.Error("Failed to delete blockage. Please try again.")
	}

	s.refreshBlockages(ctx)
	s.publishBlockagesChanged(ctx)
	return err
}

// RefreshBlockages re-pulls the blockage set and replaces the blockages
// slot. Not busy-gated: it runs inside other operations and in response to
// cross-session change events.
func (s *OverlayService) RefreshBlockages(ctx context.Context) {
	s.refreshBlockages(ctx)
}

func (s *OverlayService) refreshBlockages(ctx context.Context) {
	fc, err := s.routing.Blockages(ctx)
	if err != nil {
		slog.Warn("blockage refresh failed", "error", err)
		return
	}
	if fc == nil || len(fc.Features) == 0 {
		s.surface.ClearOverlay(domain.SlotBlockages)
		return
	}
	s.surface.SetOverlay(domain.SlotBlockages, fc)
}

func (s *OverlayService) publishBlockagesChanged(ctx context.Context) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBlockagesChanged(ctx, s.sessionID); err != nil {
		slog.Warn("blockage change publish failed", "error", err)
	}
}

// ViewRoadType fetches and displays the geometry of one road type. The
// response may arrive as a collection, a single feature, or a bare
// geometry; an empty result clears the slot and tells the user instead of
// rendering nothing silently.
func (s *OverlayService) ViewRoadType(ctx context.Context, name string) error {
	if name == "" {
		err := &domain.ValidationError{Field: "roadType", Reason: "must not be empty"}
		s.notify.Error(err.Error())
		return err
	}
	if !s.acquire() {
		return domain.ErrBusy
	}
	defer s.release()

	if fc := s.cachedRoadType(ctx, name); fc != nil {
		s.surface.SetOverlay(domain.SlotRoadType, fc)
		return nil
	}

	norm, err := s.routing.RoadTypeGeometry(ctx, name)
	if err != nil {
		s.notify.Error("Failed to load road type. Please try again.")
		return err
	}

	switch norm.Kind {
	case domain.GeometryCollectionKind:
		s.storeRoadType(ctx, name, norm.Collection)
		s.surface.SetOverlay(domain.SlotRoadType, norm.Collection)
	case domain.GeometryEmpty:
		s.surface.ClearOverlay(domain.SlotRoadType)
		s.notify.Info("No data available for road type " + name + ".")
	case domain.GeometryUnrecognized:
		slog.Warn("unrecognized road type geometry", "roadType", name, "detail", norm.Detail)
		s.surface.ClearOverlay(domain.SlotRoadType)
		s.notify.Info("No data available for road type " + name + ".")
	}
	return nil
}

func (s *OverlayService) cachedRoadType(ctx context.Context, name string) *geojson.FeatureCollection {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, "roadtype:geom:"+name)
	if err != nil || len(data) == 0 {
		return nil
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil
	}
	return fc
}

func (s *OverlayService) storeRoadType(ctx context.Context, name string, fc *geojson.FeatureCollection) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, "roadtype:geom:"+name, data, roadTypeCacheTTL)
}

// ClearRoute empties the route slot and removes both point markers.
func (s *OverlayService) ClearRoute() {
	s.surface.ClearOverlay(domain.SlotRoute)
	s.surface.ClearMarkers()
	s.state.StartMarker, s.state.EndMarker = nil, nil
}

// ClearRoadTypeHighlight empties the road-type slot.
func (s *OverlayService) ClearRoadTypeHighlight() {
	s.surface.ClearOverlay(domain.SlotRoadType)
}

// OnReadinessRisingEdge runs the load cascade fired when the collaborator
// transitions from not-ready to ready: reload the road-type catalog, apply
// the active profile's restriction, and pull the blockage set.
func (s *OverlayService) OnReadinessRisingEdge(ctx context.Context) {
	if err := s.loadRoadTypeCatalog(ctx); err != nil {
		slog.Warn("road type catalog load failed", "error", err)
	}
	if s.acquire() {
		if err := s.applyProfileRestriction(ctx, s.state.Travel); err != nil {
			slog.Warn("profile restriction failed on readiness edge", "error", err)
		}
		s.release()
	}
	s.refreshBlockages(ctx)
}

// SetReady records the collaborator's readiness in the session state.
func (s *OverlayService) SetReady(ready bool) {
	s.state.Ready = ready
}

var _ RoutePlanner = (*OverlayService)(nil)
