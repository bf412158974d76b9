package http

import (
	natsadapter "github.com/routelab/routeboard/internal/adapters/nats"
	"github.com/routelab/routeboard/internal/adapters/postgres"
	"github.com/routelab/routeboard/internal/adapters/valkey"
	"github.com/routelab/routeboard/internal/adapters/ws"
	"github.com/routelab/routeboard/internal/core/ports"
	"github.com/routelab/routeboard/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Bus, DB, and
// Cache are optional backends and may be nil.
type Dependencies struct {
	Routing   ports.RoutingService
	Readiness *usecases.ReadinessService
	Search    *usecases.SearchService
	History   ports.RouteHistoryRepository
	Hub       *ws.Hub
	Bus       *natsadapter.Bus
	DB        *postgres.DB
	Cache     *valkey.Cache
}
