package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/routelab/routeboard/internal/adapters/http"
	natsadapter "github.com/routelab/routeboard/internal/adapters/nats"
	"github.com/routelab/routeboard/internal/adapters/nominatim"
	"github.com/routelab/routeboard/internal/adapters/postgres"
	"github.com/routelab/routeboard/internal/adapters/routing"
	"github.com/routelab/routeboard/internal/adapters/valkey"
	"github.com/routelab/routeboard/internal/adapters/ws"
	"github.com/routelab/routeboard/internal/core/ports"
	"github.com/routelab/routeboard/internal/core/usecases"
	"github.com/routelab/routeboard/internal/pkg/config"
	"github.com/routelab/routeboard/internal/pkg/logging"
	"github.com/routelab/routeboard/internal/pkg/metrics"
	"github.com/routelab/routeboard/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("routeboard-sessiond")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Routing collaborator
	routingClient := routing.NewClient(cfg.Routing.BaseURL, time.Duration(cfg.Routing.Timeout)*time.Second)

	// Geocoder
	geocoder := nominatim.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.CountryCode, time.Duration(cfg.Geocoding.Timeout)*time.Second)

	// Optional backends
	var cache *valkey.Cache
	var cacheSvc ports.CacheService
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			cacheSvc = cache
		}
	}

	var bus *natsadapter.Bus
	if cfg.NATS.Enabled {
		bus, err = natsadapter.NewBus(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer bus.Close()
		}
	}

	var db *postgres.DB
	var historyRepo ports.RouteHistoryRepository
	if cfg.Database.Enabled {
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolMetrics(ctx, 15*time.Second)
		historyRepo = postgres.NewRouteHistoryRepo(db)
	}

	// Readiness probe; transitions fan out to all sessions through the hub.
	var hub *ws.Hub
	readiness := usecases.NewReadinessService(
		routingClient,
		time.Duration(cfg.Routing.PollInterval)*time.Second,
		func(ready bool) {
			if ready {
				metrics.RoutingReady.Set(1)
			} else {
				metrics.RoutingReady.Set(0)
			}
			if hub != nil {
				// Any observed change to ready is a rising edge.
				hub.OnReadinessChange(ready, ready)
			}
		},
		nil,
	)

	searchSvc := usecases.NewSearchService(geocoder, cacheSvc)

	sessionDeps := ws.SessionDeps{
		Routing: ws.RoutingDeps{
			Service: routingClient,
			Cache:   cacheSvc,
			Ready:   readiness.Current,
		},
		Search: searchSvc,
	}
	if bus != nil {
		sessionDeps.Routing.Events = bus
	}
	if historyRepo != nil {
		sessionDeps.Routing.History = historyRepo
	}
	hub = ws.NewHub(sessionDeps)

	// Probe starts only after the hub exists; its callback fans out to it.
	go readiness.Run(ctx)

	if bus != nil {
		stop, err := hub.StartBlockageFanout(bus)
		if err != nil {
			slog.Warn("blockage fanout unavailable", "error", err)
		} else {
			defer stop()
		}
	}

	deps := &http.Dependencies{
		Routing:   routingClient,
		Readiness: readiness,
		Search:    searchSvc,
		History:   historyRepo,
		Hub:       hub,
		Bus:       bus,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "RouteBoard Session Server",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("session server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
