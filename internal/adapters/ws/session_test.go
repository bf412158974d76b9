package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/usecases"
)

type fakeRouting struct {
	routeCalls int32
}

func (f *fakeRouting) Ready(ctx context.Context) (bool, error)            { return true, nil }
func (f *fakeRouting) AllRoadTypes(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeRouting) ValidRoadTypes(ctx context.Context) ([]string, error) {
	return nil, nil
}
func (f *fakeRouting) SetValidRoadTypes(ctx context.Context, types []string) ([]string, error) {
	return types, nil
}
func (f *fakeRouting) RoadTypeGeometry(ctx context.Context, name string) (domain.NormalizedGeometry, error) {
	return domain.NormalizedGeometry{Kind: domain.GeometryEmpty}, nil
}
func (f *fakeRouting) Route(ctx context.Context, req domain.RouteRequest) (*geojson.FeatureCollection, error) {
	atomic.AddInt32(&f.routeCalls, 1)
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{
		{req.StartPt.Long, req.StartPt.Lat},
		{req.EndPt.Long, req.EndPt.Lat},
	}))
	return fc, nil
}
func (f *fakeRouting) Blockages(ctx context.Context) (*geojson.FeatureCollection, error) {
	return geojson.NewFeatureCollection(), nil
}
func (f *fakeRouting) AddBlockage(ctx context.Context, b domain.Blockage) error { return nil }
func (f *fakeRouting) DeleteBlockage(ctx context.Context, name string) error    { return nil }

type fakeGeocoder struct {
	mu      sync.Mutex
	queries []string
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) ([]domain.GeocodeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return []domain.GeocodeResult{{DisplayName: query}}, nil
}

func (f *fakeGeocoder) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newTestSession(routing *fakeRouting, geocoder *fakeGeocoder) *Session {
	deps := SessionDeps{
		Routing: RoutingDeps{
			Service: routing,
			Ready:   func() bool { return true },
		},
	}
	if geocoder != nil {
		deps.Search = usecases.NewSearchService(geocoder, nil)
	}
	return NewSession(deps)
}

// drain collects everything queued on the outbound channel.
func drain(s *Session) []serverFrame {
	var frames []serverFrame
	for {
		select {
		case f := <-s.out:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func frameTypes(frames []serverFrame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Type
	}
	return out
}

func hasFrame(frames []serverFrame, typ string) bool {
	for _, f := range frames {
		if f.Type == typ {
			return true
		}
	}
	return false
}

func TestClickFrameSequenceProducesRoute(t *testing.T) {
	routing := &fakeRouting{}
	s := newTestSession(routing, nil)
	ctx := context.Background()

	s.handle(ctx, clientFrame{Type: "arm_route"})
	s.handle(ctx, clientFrame{Type: "click", Point: &domain.Point{Lat: 1.30, Long: 103.80}})
	s.handle(ctx, clientFrame{Type: "click", Point: &domain.Point{Lat: 1.38, Long: 103.75}})

	if n := atomic.LoadInt32(&routing.routeCalls); n != 1 {
		t.Fatalf("route calls = %d, want 1", n)
	}
	frames := drain(s)
	if !hasFrame(frames, "set_markers") {
		t.Errorf("missing set_markers, got %v", frameTypes(frames))
	}
	if !hasFrame(frames, "set_overlay") {
		t.Errorf("missing set_overlay, got %v", frameTypes(frames))
	}
	if s.state.RoutePhase != domain.RouteIdle {
		t.Errorf("route phase = %s, want idle after resolution", s.state.RoutePhase)
	}
}

func TestUnknownFrameTypeAnswersWithNotice(t *testing.T) {
	s := newTestSession(&fakeRouting{}, nil)
	s.handle(context.Background(), clientFrame{Type: "teleport"})

	frames := drain(s)
	if len(frames) != 1 || frames[0].Type != "notice" || frames[0].Level != "error" {
		t.Fatalf("frames = %v", frames)
	}
}

func TestClickWithoutPointIsIgnored(t *testing.T) {
	s := newTestSession(&fakeRouting{}, nil)
	s.handle(context.Background(), clientFrame{Type: "click"})

	if frames := drain(s); len(frames) != 0 {
		t.Errorf("frames = %v, want none", frameTypes(frames))
	}
}

func TestStateFrameReflectsArming(t *testing.T) {
	s := newTestSession(&fakeRouting{}, nil)
	s.handle(context.Background(), clientFrame{Type: "arm_blockage"})

	frames := drain(s)
	if len(frames) != 1 || frames[0].Type != "state" {
		t.Fatalf("frames = %v", frameTypes(frames))
	}
	if frames[0].State.BlockagePhase != string(domain.SelectingLocation) {
		t.Errorf("blockage phase = %s", frames[0].State.BlockagePhase)
	}
}

func TestSearchDebounceCoalescesBursts(t *testing.T) {
	geocoder := &fakeGeocoder{}
	s := newTestSession(&fakeRouting{}, geocoder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.eventLoop(ctx)

	// A typing burst: only the final query may reach the geocoder.
	s.debounceSearch("ci")
	time.Sleep(50 * time.Millisecond)
	s.debounceSearch("city")
	time.Sleep(50 * time.Millisecond)
	s.debounceSearch("city hall")

	time.Sleep(searchDebounce + 200*time.Millisecond)

	queries := geocoder.seen()
	if len(queries) != 1 {
		t.Fatalf("geocoder calls = %v, want exactly one", queries)
	}
	if queries[0] != "city hall" {
		t.Errorf("query = %q, want the last of the burst", queries[0])
	}

	frames := drain(s)
	if !hasFrame(frames, "search_results") {
		t.Errorf("missing search_results, got %v", frameTypes(frames))
	}
}
