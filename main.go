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
	"github.com/sarthakdev/medium-be/internal/api"
	"github.com/sarthakdev/medium-be/internal/auth"
	"github.com/sarthakdev/medium-be/internal/config"
	"github.com/sarthakdev/medium-be/internal/database"
	"github.com/sarthakdev/medium-be/internal/logger"
	"github.com/sarthakdev/medium-be/internal/monitoring"
	"github.com/sarthakdev/medium-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up the shared database pool
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	tokens := auth.NewService(cfg.JWTSecret)
	userService := services.NewUserService(db)
	postService := services.NewPostService(db)
	mediaService := services.NewMediaService(db, cfg.Cloudinary)

	// Set up and run the background image sweeper
	sweeper, err := monitoring.NewImageSweeper(db, cfg.ImageSweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure image sweeper")
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(tokens, userService, postService, mediaService, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
