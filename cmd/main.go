package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Dosada05/friendly-matches/config"
	"github.com/Dosada05/friendly-matches/db"
	"github.com/Dosada05/friendly-matches/handlers"
	"github.com/Dosada05/friendly-matches/repositories"
	api "github.com/Dosada05/friendly-matches/routes"
	"github.com/Dosada05/friendly-matches/services"
	"github.com/go-chi/chi/v5"
)

// @title Friendly Matches API
// @version 1.0
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("timezone", cfg.Location.String()),
		slog.Duration("reconcile_interval", cfg.ReconcileInterval),
	)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Репозитории
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	ruleRepo := repositories.NewPostgresRuleRepository(dbConn)
	enrollmentRepo := repositories.NewPostgresEnrollmentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	penaltyRepo := repositories.NewPostgresPenaltyRepository(dbConn)
	reportRepo := repositories.NewPostgresReportRepository(dbConn)
	transactor := repositories.NewPostgresTransactor(dbConn)

	// Сервисы
	clock := services.SystemClock{}
	guard := services.NewMatchGuard(transactor, matchRepo)
	reconciler := services.NewLifecycleReconciler(matchRepo, ruleRepo, enrollmentRepo, clock, cfg.Location, logger)
	eligibility := services.NewEligibilityChecker(teamRepo)
	schedule := services.NewScheduleConflictDetector(enrollmentRepo, cfg.Location)

	matchService := services.NewMatchService(matchRepo, guard, reconciler, clock, cfg.ReconcileWorkers, logger)
	ruleService := services.NewRuleService(ruleRepo, guard, reconciler, cfg.Location, logger)
	enrollmentService := services.NewEnrollmentService(
		enrollmentRepo,
		ruleRepo,
		teamRepo,
		penaltyRepo,
		guard,
		reconciler,
		eligibility,
		schedule,
		clock,
		logger,
	)
	penaltyService := services.NewPenaltyService(
		penaltyRepo,
		reportRepo,
		enrollmentRepo,
		matchRepo,
		guard,
		reconciler,
		clock,
		logger,
	)
	logger.Info("services initialized")

	// Плановый пересчёт статусов: матчи без обращений тоже должны стареть.
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	var schedulerDone sync.WaitGroup
	schedulerDone.Add(1)
	go func() {
		defer schedulerDone.Done()
		runReconcileScheduler(schedulerCtx, matchService, cfg.ReconcileInterval, logger)
	}()

	router := chi.NewRouter()
	api.SetupRoutes(router,
		api.Options{
			JWTSecret:      []byte(cfg.JWTSecretKey),
			AllowedOrigins: cfg.CORSAllowedOrigins,
			RequestTimeout: cfg.RequestTimeout,
		},
		api.Handlers{
			Match:      handlers.NewMatchHandler(matchService, cfg.Location),
			Rule:       handlers.NewRuleHandler(ruleService),
			Enrollment: handlers.NewEnrollmentHandler(enrollmentService),
			Penalty:    handlers.NewPenaltyHandler(penaltyService),
			Health:     handlers.NewHealthHandler(dbConn),
		},
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
		cancelShutdown()
	}

	stopScheduler()
	schedulerDone.Wait()
	logger.Info("application exited")
	if exitCode != 0 {
		dbConn.Close()
		os.Exit(exitCode)
	}
}

func runReconcileScheduler(ctx context.Context, matchService services.MatchService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("reconcile scheduler started", slog.Duration("interval", interval))

	run := func() {
		runCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if _, err := matchService.ReconcileAll(runCtx); err != nil && ctx.Err() == nil {
			logger.Error("scheduler: reconciliation failed", slog.Any("error", err))
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			logger.Info("reconcile scheduler stopped")
			return
		case <-ticker.C:
			run()
		}
	}
}
