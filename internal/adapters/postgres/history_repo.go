package postgres

import (
	"context"
	"time"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/ports"
)

// RouteHistoryRepo implements ports.RouteHistoryRepository. Each row is one
// route computation attempt, successful or not.
type RouteHistoryRepo struct {
	db *DB
}

func NewRouteHistoryRepo(db *DB) *RouteHistoryRepo {
	return &RouteHistoryRepo{db: db}
}

func (r *RouteHistoryRepo) Record(ctx context.Context, entry *domain.RouteHistoryEntry) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO route_history
			(session_id, start_long, start_lat, end_long, end_lat,
			 travel_type, succeeded, feature_count, duration_ms, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, entry.SessionID,
		entry.Start.Long, entry.Start.Lat,
		entry.End.Long, entry.End.Lat,
		string(entry.Travel), entry.Succeeded, entry.Features,
		entry.Duration.Milliseconds(), entry.RequestedAt,
	).Scan(&entry.ID)
}

func (r *RouteHistoryRepo) Recent(ctx context.Context, limit int) ([]domain.RouteHistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_id, start_long, start_lat, end_long, end_lat,
		       travel_type, succeeded, feature_count, duration_ms, requested_at
		FROM route_history
		ORDER BY requested_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.RouteHistoryEntry
	for rows.Next() {
		var e domain.RouteHistoryEntry
		var travel string
		var durationMs int64
		if err := rows.Scan(
			&e.ID, &e.SessionID,
			&e.Start.Long, &e.Start.Lat, &e.End.Long, &e.End.Lat,
			&travel, &e.Succeeded, &e.Features, &durationMs, &e.RequestedAt,
		); err != nil {
			return nil, err
		}
		e.Travel = domain.TravelType(travel)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ ports.RouteHistoryRepository = (*RouteHistoryRepo)(nil)
