package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pr-review-analytics/api"
	"pr-review-analytics/internal/config"
	"pr-review-analytics/internal/database"
	"pr-review-analytics/internal/handler"
	"pr-review-analytics/internal/repository"
	"pr-review-analytics/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	// Логгер
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Конфиг
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warnf(".env not found: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}

	// База данных (database/sql + миграции goose)
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		logger.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	logger.Info("Database connected")

	txManager := database.NewTxManager(db, logger, cfg.TxMaxAttempts)

	// Репозитории
	repos := usecase.Repositories{
		PullRequests:  repository.NewPRRepository(db),
		Reviews:       repository.NewReviewRepository(db),
		Comments:      repository.NewReviewCommentRepository(db),
		Commits:       repository.NewCommitRepository(db),
		Lifecycles:    repository.NewLifecycleRepository(db),
		Bottlenecks:   repository.NewBottleneckRepository(db),
		Sessions:      repository.NewReviewSessionRepository(db),
		ResponseTimes: repository.NewResponseTimeRepository(db),
		Activities:    repository.NewReviewActivityRepository(db),
		Analyses:      repository.NewCommentAnalysisRepository(db),
		Snapshots:     repository.NewSnapshotRepository(db),
	}

	// Use Cases
	eventUC := usecase.NewEventUseCase(txManager, repos, logger)
	analyticsUC := usecase.NewAnalyticsUseCase(txManager, repos)

	// Echo + Handlers
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(handler.LoggingMiddleware(logger))

	apiHandler := handler.NewAPIHandler(eventUC, analyticsUC, cfg.Policy(), logger)
	api.RegisterHandlers(e, apiHandler)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Запуск сервера
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil {
			logger.Infof("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatalf("Shutdown failed: %v", err)
	}

	logger.Info("Server exited")
}
