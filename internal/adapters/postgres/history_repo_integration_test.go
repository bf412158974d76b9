//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/routelab/routeboard/internal/adapters/postgres"
	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/pkg/config"
)

func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("routeboard-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewRouteHistoryRepo(db)
	ctx := context.Background()

	entry := &domain.RouteHistoryEntry{
		SessionID:   "it-session",
		Start:       domain.Point{Lat: 1.30, Long: 103.80},
		End:         domain.Point{Lat: 1.38, Long: 103.75},
		Travel:      domain.TravelCar,
		Succeeded:   true,
		Features:    3,
		Duration:    420 * time.Millisecond,
		RequestedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Record(ctx, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Record must fill in the generated id")
	}

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) == 0 {
		t.Fatal("Recent returned nothing")
	}

	var got *domain.RouteHistoryEntry
	for i := range recent {
		if recent[i].ID == entry.ID {
			got = &recent[i]
			break
		}
	}
	if got == nil {
		t.Fatalf("recorded entry %s not in recent list", entry.ID)
	}
	if got.Travel != domain.TravelCar || !got.Succeeded || got.Features != 3 {
		t.Errorf("round-tripped entry = %+v", got)
	}
	if got.Duration != 420*time.Millisecond {
		t.Errorf("duration = %v, want 420ms", got.Duration)
	}
}
