package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/api"
	"github.com/foxhuntgame/foxhunt/internal/app/scheduler"
	"github.com/foxhuntgame/foxhunt/internal/app/verifier"
	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/points"
	"github.com/foxhuntgame/foxhunt/internal/domain/profile"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/events"
	eventhandlers "github.com/foxhuntgame/foxhunt/internal/events/handlers"
	"github.com/foxhuntgame/foxhunt/internal/ws"
	"github.com/foxhuntgame/foxhunt/pkg/config"
	"github.com/foxhuntgame/foxhunt/pkg/redisx"
	"github.com/foxhuntgame/foxhunt/pkg/token"
)

func main() {
	// Initialize configuration and logger
	cfg, log, err := config.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Ensure logger is flushed on exit
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Fox Hunt server",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.Server.Environment),
	)

	// Initialize Redis client (URL-based)
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = cfg.Redis.URL
	}

	redisClient, err := redisx.NewClient(redisURL, log)
	if err != nil {
		log.Fatal("Failed to initialize Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	// Domain state
	locations := location.NewStore()
	holder := selection.NewHolder()

	profiles := profile.NewCachedStore(
		profile.NewRedisRepository(redisClient.Client),
		cfg.Hunt.ProfileCacheTTL,
		cfg.Hunt.ProfileTimeout,
		log,
	)

	ledger := points.NewLedger(points.NewRedisRepository(redisClient.Client), log)

	tokens := token.NewService(cfg.Hunt.TokenSecret, "foxhunt")

	// Event pipeline
	bus, err := events.NewBus(log)
	if err != nil {
		log.Fatal("Failed to create event bus", zap.Error(err))
	}
	defer bus.Close()

	// Stream server and hub
	hub := ws.NewHub(holder, locations, cfg.Stream.PingInterval, cfg.Stream.IdleDeadline, log)
	streamServer := ws.NewServer(cfg.Stream, hub, locations, holder, bus, log)

	streamHandler := eventhandlers.NewStreamEventHandler(hub, log)
	err = bus.AddHandlers(
		cqrs.NewEventHandler("BroadcastLocationUpdated", streamHandler.HandleLocationUpdated),
		cqrs.NewEventHandler("BroadcastSelectionPublished", streamHandler.HandleSelectionPublished),
		cqrs.NewEventHandler("BroadcastTargetLocated", streamHandler.HandleTargetLocated),
	)
	if err != nil {
		log.Fatal("Failed to register event handlers", zap.Error(err))
	}

	// Application services
	sched := scheduler.New(profiles, holder, locations, bus,
		cfg.Hunt.SelectionInterval, cfg.Hunt.ProfileTimeout, log)
	verif := verifier.New(profiles, locations, holder, ledger, tokens,
		cfg.Hunt.ProximityThreshold, cfg.Hunt.ProfileTimeout, log)

	// Control API server
	apiServer := api.NewServer(cfg, log, redisClient, api.Deps{
		Hub:       hub,
		Locations: locations,
		Holder:    holder,
		Scheduler: sched,
		Verifier:  verif,
		Ledger:    ledger,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		cancel()
	}()

	go func() {
		if err := bus.Run(ctx); err != nil {
			log.Error("Event bus error", zap.Error(err))
		}
	}()

	// Hold the scheduler until subscriptions are live so the first selection
	// broadcast is not lost
	go func() {
		<-bus.Running()
		sched.Run(ctx)
	}()

	go func() {
		if err := streamServer.Start(ctx); err != nil {
			log.Error("Stream server error", zap.Error(err))
		}
	}()

	// Start control server (blocks until shutdown)
	if err := apiServer.Start(ctx); err != nil {
		log.Error("Server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server gracefully stopped")
}
