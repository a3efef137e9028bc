package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/api"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/database"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/migrations"
	"github.com/playmatatu/plinko/internal/redis"
	"github.com/playmatatu/plinko/internal/session"
	"github.com/playmatatu/plinko/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	board, err := game.NewBoard(cfg.BoardConfig())
	if err != nil {
		log.Fatalf("Invalid board configuration: %v", err)
	}
	log.Printf("Board: %d pegs, %d zones, %.0fx%.0f", len(board.Pegs()), len(board.Zones()), board.Width(), board.Height())

	// Postgres is optional: without it the drop audit is disabled.
	var (
		audit    *database.AuditStore
		recorder session.Recorder
	)
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		audit = database.NewAuditStore(db)
		recorder = audit
		log.Println("[DB] Drop audit enabled")
	} else {
		log.Println("[DB] DATABASE_URL not set - drop audit disabled")
	}

	// Redis is optional too: events, snapshot cache and leaderboard.
	var (
		pub       *redis.Publisher
		publisher session.Publisher
	)
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()

		pub = redis.NewPublisher(rdb)
		publisher = pub
		log.Println("[REDIS] Event publishing enabled")
	} else {
		log.Println("[REDIS] REDIS_URL not set - events and leaderboard disabled")
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	mgr := session.NewManager(board, session.NewSettings(cfg), hub, recorder, publisher)
	defer mgr.Shutdown()
	mgr.StartExpiryWorker(ctx, time.Duration(cfg.SessionIdleMinutes)*time.Minute, time.Minute)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, api.Deps{
		Config:    cfg,
		Sessions:  mgr,
		Hub:       hub,
		Audit:     audit,
		Publisher: pub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting Plinko server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
