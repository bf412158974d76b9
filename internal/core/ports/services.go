package ports

import (
	"context"
	"time"

	"github.com/routelab/routeboard/internal/core/domain"
)

// EventPublisher fans out cross-session events to a message broker.
type EventPublisher interface {
	// PublishBlockagesChanged tells every session that the blockage set was
	// modified and should be re-pulled. actor identifies the originating
	// session so it can skip its own echo.
	PublishBlockagesChanged(ctx context.Context, actor string) error
}

// EventSubscriber receives cross-session events from a message broker.
// The returned stop function cancels the subscription.
type EventSubscriber interface {
	SubscribeBlockagesChanged(handler func(actor string)) (stop func(), err error)
}

// CacheService provides read-through caching for remote lookups.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RouteHistoryRepository persists an audit trail of route computations.
type RouteHistoryRepository interface {
	Record(ctx context.Context, entry *domain.RouteHistoryEntry) error
	Recent(ctx context.Context, limit int) ([]domain.RouteHistoryEntry, error)
}
