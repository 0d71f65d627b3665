package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/internal/stock/handler"
	"github.com/labstock/labstock-backend/internal/stock/repository"
	"github.com/labstock/labstock-backend/internal/stock/service"
	"github.com/labstock/labstock-backend/migrations"
	"github.com/labstock/labstock-backend/pkg/config"
	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/httputil"
	"github.com/labstock/labstock-backend/pkg/logger"
	"github.com/labstock/labstock-backend/pkg/messaging"
)

const serviceName = "stock-service"

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Stock Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db.DB); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
		log.Info().Msg("schema migrations applied")
	}

	if err := repository.VerifySchema(ctx, db, log); err != nil {
		log.Warn().Err(err).Msg("database schema differs from the table registry")
	}

	bus := events.NewBus(log.WithComponent("event-bus"))

	// The broker is optional; without it events stay in process
	var broker *messaging.Broker
	var relay *events.Relay
	if cfg.RabbitMQ.Enabled {
		broker, err = messaging.Dial(&cfg.RabbitMQ, log.WithComponent("broker"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer broker.Close()

		publisher := messaging.NewPublisher(broker, serviceName, log)
		relay = events.NewRelay(publisher, cfg.RabbitMQ.RelayBuffer, log.WithComponent("event-relay"))
		relay.Attach(bus)
	}

	engine := service.NewEngine(service.NewStores(db), bus, cfg.Stock, log)

	scheduler := service.NewExpiryScheduler(engine.Expiration, cfg.Stock.ScanSchedule, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start expiry scheduler")
	}

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
		}
		if broker != nil {
			status["rabbitmq"] = broker.Health()
		}
		httputil.JSON(w, http.StatusOK, status)
	})

	// API routes
	r.Route("/api/v1/stock", func(r chi.Router) {
		handler.Routes(r, engine, scheduler, log)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Stop scans before the store closes
	cancel()
	scheduler.Stop()

	// Flush queued events before the broker connection closes
	if relay != nil {
		relay.Detach(bus)
		if err := relay.Drain(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("event relay not fully drained")
		}
	}

	log.Info().Msg("server stopped")
}
