package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raterly/raterly-be/internal/api"
	"github.com/raterly/raterly-be/internal/auth"
	"github.com/raterly/raterly-be/internal/config"
	"github.com/raterly/raterly-be/internal/database"
	"github.com/raterly/raterly-be/internal/logger"
	"github.com/raterly/raterly-be/internal/monitoring"
	"github.com/raterly/raterly-be/internal/services"
	"github.com/raterly/raterly-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up token manager
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	// Set up the live feed hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	reviewService := services.NewReviewService(db)
	eventService := services.NewEventService(db)

	// Set up and run the background stat updater
	statUpdater, err := monitoring.NewStatUpdater(db, hub, cfg.StatsSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.StatsSchedule).Msg("Invalid stats schedule")
	}
	go statUpdater.Run()

	// Set up router
	router := api.NewRouter(cfg.AllowedOrigins, tokens, hub, userService, reviewService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
