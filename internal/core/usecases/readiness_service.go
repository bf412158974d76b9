package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/routelab/routeboard/internal/core/ports"
)

// ReadinessService polls the routing collaborator on a fixed interval and
// detects readiness edges explicitly: onState fires on every observed
// change, onRise fires only on a false-to-true transition. The poller stops
// when its context is canceled, so the recurring timer never outlives the
// server.
type ReadinessService struct {
	routing  ports.RoutingService
	interval time.Duration
	onState  func(ready bool)
	onRise   func(ctx context.Context)

	mu      sync.Mutex
	current bool
}

// NewReadinessService creates a poller. Either callback may be nil.
func NewReadinessService(routing ports.RoutingService, interval time.Duration, onState func(bool), onRise func(context.Context)) *ReadinessService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ReadinessService{
		routing:  routing,
		interval: interval,
		onState:  onState,
		onRise:   onRise,
	}
}

// Current returns the last observed readiness.
func (s *ReadinessService) Current() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Run polls until ctx is canceled. The first check happens immediately.
func (s *ReadinessService) Run(ctx context.Context) {
	s.check(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *ReadinessService) check(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, s.interval)
	ready, err := s.routing.Ready(callCtx)
	cancel()
	if err != nil {
		// A definitive 4xx/5xx is a hard error, not the normal warm-up
		// path, but the session still just waits for the next poll.
		slog.Error("readiness check failed", "error", err)
		ready = false
	}

	s.mu.Lock()
	prev := s.current
	s.current = ready
	s.mu.Unlock()

	if prev == ready {
		return
	}

	slog.Info("routing service readiness changed", "ready", ready)
	if s.onState != nil {
		s.onState(ready)
	}
	if !prev && ready && s.onRise != nil {
		s.onRise(ctx)
	}
}
