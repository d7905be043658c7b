// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/groomdesk/groomdesk/internal/booking"
	"github.com/groomdesk/groomdesk/internal/cache"
	"github.com/groomdesk/groomdesk/internal/config"
	"github.com/groomdesk/groomdesk/internal/db"
	"github.com/groomdesk/groomdesk/internal/ratelimit"
	"github.com/groomdesk/groomdesk/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func configPath() string {
	if path, ok := os.LookupEnv("GROOMDESK_CONFIG"); ok {
		return path
	}
	return "config.yaml"
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Business.Timezone).Msg("Failed to load business timezone")
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	clock := booking.NewRealClock()
	engine := booking.NewEngine(loc, clock)

	settingsCache := cache.New()
	defer settingsCache.Close()

	limiter := ratelimit.New(ratelimit.DefaultConfig())
	defer limiter.Close()

	jobs, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if err := scheduler.RegisterNoShowJob(jobs, database, clock, cfg.Jobs.NoShowCron, cfg.NoShowGrace()); err != nil {
		log.Fatal().Err(err).Msg("Failed to register no-show job")
	}
	jobs.Start()

	server := newServer(cfg, database, engine, settingsCache, limiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("timezone", cfg.Business.Timezone).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := jobs.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown error")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
