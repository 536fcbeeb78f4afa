package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/attempt"
	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/database"
	"github.com/learnedu/learnedu-backend/internal/handler"
	"github.com/learnedu/learnedu-backend/internal/logger"
	"github.com/learnedu/learnedu-backend/internal/middleware"
	"github.com/learnedu/learnedu-backend/internal/repository"
	"github.com/learnedu/learnedu-backend/internal/router"
	"github.com/learnedu/learnedu-backend/internal/service"
	"github.com/learnedu/learnedu-backend/internal/store"
	"github.com/learnedu/learnedu-backend/internal/validator"
	"github.com/learnedu/learnedu-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting LearnEdu Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	kv := store.NewRedisKV(rdb)

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	hierarchyRepo := repository.NewHierarchyRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, kv)
	userService := service.NewUserService(userRepo)
	examService := service.NewExamService(examRepo, questionRepo, kv, log)
	resultService := service.NewResultService(resultRepo, examRepo, questionRepo, kv, rdb, log)
	practiceService := service.NewPracticeService(questionRepo, kv)
	hierarchyService := service.NewHierarchyService(hierarchyRepo)

	// ─── Attempt Manager ──────────────────────────────────────────────
	manager := attempt.NewManager(resultService, kv, log)

	// Read cache is shared with the router; websocket submits (including
	// auto-submit on timer expiry) must flush it just like HTTP writes do.
	readCache := middleware.NewResponseCache(cfg.ReadCacheTTL)
	manager.OnSubmit(readCache.Flush)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		Exam:      handler.NewExamHandler(examService, practiceService, manager, log),
		Result:    handler.NewResultHandler(resultService),
		Hierarchy: handler.NewHierarchyHandler(hierarchyService),
		Admin:     handler.NewAdminHandler(examService, log),
		WS:        handler.NewWSHandler(manager, kv, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	resultWorker := worker.NewResultWorker(resultRepo, rdb, log)
	go resultWorker.Start(workerCtx)

	maintenanceWorker := worker.NewMaintenanceWorker(rdb, cfg.MaintenanceCron, cfg.MarkerMaxAge, log)
	if err := maintenanceWorker.Start(); err != nil {
		log.Fatal().Err(err).Msg("Invalid maintenance schedule")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, readCache, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop attempt countdowns and background workers, draining queues.
	manager.Stop()
	maintenanceWorker.Stop()
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
