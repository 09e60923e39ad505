package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/api"
	ratelimit "github.com/isdelr/expense-tracker-be/internal/api/middleware"
	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/config"
	"github.com/isdelr/expense-tracker-be/internal/database"
	"github.com/isdelr/expense-tracker-be/internal/jobs"
	"github.com/isdelr/expense-tracker-be/internal/logger"
	"github.com/isdelr/expense-tracker-be/internal/notify"
	"github.com/isdelr/expense-tracker-be/internal/repository"
	"github.com/isdelr/expense-tracker-be/internal/services"
	"github.com/isdelr/expense-tracker-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	scheduler := jobs.NewScheduler()

	revoker, closeRevoker, err := newRevoker(cfg, scheduler)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.RevocationBackend).Msg("Failed to initialize token revocation")
	}
	defer closeRevoker.Close()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	notifiers := notify.Multi{hub}
	if cfg.AMQPURL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("Publishing expense events to AMQP")
	}

	// Set up services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(repository.NewUserRepository(db), tokens, revoker)
	expenseService := services.NewExpenseService(repository.NewExpenseRepository(db), notifiers)

	authLimiter := ratelimit.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	if err := scheduler.Add("@every 5m", "rate-limiter-sweep", jobs.SweepTask("rate-limiter-sweep", authLimiter)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule rate limiter sweep")
	}
	scheduler.Start()

	// Set up router
	router := api.NewRouter(
		api.Options{ClientURL: cfg.ClientURL, SecureCookies: cfg.IsProduction()},
		authService,
		expenseService,
		hub,
		authLimiter,
	)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	scheduler.Stop()
	hub.Stop()

	log.Info().Msg("Server exiting")
}

// newRevoker builds the configured revocation set. The returned closer
// is always safe to call.
func newRevoker(cfg *config.Config, scheduler *jobs.Scheduler) (auth.Revoker, io.Closer, error) {
	switch cfg.RevocationBackend {
	case config.RevocationMemory:
		revoker := auth.NewMemoryRevoker()
		if err := scheduler.Add("@every 10m", "revocation-sweep", jobs.SweepTask("revocation-sweep", revoker)); err != nil {
			return nil, nil, err
		}
		return revoker, noClose{}, nil
	case config.RevocationRedis:
		revoker, err := auth.NewRedisRevoker(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return revoker, revoker, nil
	default:
		return auth.NopRevoker{}, noClose{}, nil
	}
}

type noClose struct{}

func (noClose) Close() error { return nil }
