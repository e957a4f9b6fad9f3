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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradecap/configs"
	delivery "tradecap/internal/delivery/http"
	"tradecap/internal/database"
	"tradecap/internal/infra"
	"tradecap/internal/repository"
	"tradecap/internal/service"
	"tradecap/internal/usecase"
	"tradecap/internal/utils"
	"tradecap/pkg/logger"
	"tradecap/pkg/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Repositories
	signalRepo := repository.NewSignalRepository(db)
	userRepo := repository.NewUserRepository(db)
	revenueRepo := repository.NewRevenueRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)

	// Core services
	clock := utils.NewSystemClock(cfg.Trading.Timezone)
	recorder := metrics.New()

	engine := usecase.NewTradeEngine(
		signalRepo, userRepo, revenueRepo,
		clock, cfg.Trading.StrictBoundary, recorder, log,
	)
	recovery := service.NewRecoveryService(signalRepo, userRepo, clock, recorder, log)
	provisioning := service.NewProvisioningService(signalRepo, userRepo, clock, log)
	projection := service.NewProjectionService(clock, log)

	// Background scheduler: window runs, provisioning, recovery sweeps
	scheduler := infra.NewScheduler(engine, recovery, provisioning, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer scheduler.Stop()

	if cfg.Trading.RecoverOnStartup {
		if result, err := recovery.RecoverMissed(ctx); err != nil {
			log.Error().Err(err).Msg("startup recovery sweep failed")
		} else if result.Processed > 0 {
			log.Info().Int("processed", result.Processed).Msg("startup recovery replayed missed signals")
		}
	}

	// API server
	e := echo.New()
	e.HideBanner = true

	authHandler := delivery.NewAuthHandler(userRepo)
	accountHandler := delivery.NewAccountHandler(
		userRepo, signalRepo, revenueRepo, depositRepo, withdrawalRepo,
		engine, provisioning, clock,
	)
	projectionHandler := delivery.NewProjectionHandler(projection, userRepo, signalRepo, clock)
	adminHandler := delivery.NewAdminHandler(scheduler, provisioning, userRepo)

	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:       authHandler,
		AccountHandler:    accountHandler,
		ProjectionHandler: projectionHandler,
		AdminHandler:      adminHandler,
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Info().Str("addr", addr).Str("env", cfg.Server.Env).Msg("API server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	// Ops server: liveness and Prometheus metrics on a separate port
	ops := chi.NewRouter()
	ops.Use(chimiddleware.Recoverer)
	ops.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"degraded","error":%q}`, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})
	ops.Handle("/metrics", promhttp.Handler())

	opsSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.OpsPort),
		Handler:      ops,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", opsSrv.Addr).Msg("ops server starting")
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ops server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server forced to shut down")
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server forced to shut down")
	}

	log.Info().Msg("server exited gracefully")
}
