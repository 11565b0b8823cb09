package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/client"
	"github.com/BuzzLyutic/study-planner/internal/config"
	"github.com/BuzzLyutic/study-planner/internal/handler"
	"github.com/BuzzLyutic/study-planner/internal/pomodoro"
	"github.com/BuzzLyutic/study-planner/internal/repo"
	"github.com/BuzzLyutic/study-planner/internal/service"
	"github.com/BuzzLyutic/study-planner/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаем логгер
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	loc, _ := cfg.Location()

	// Кэш задач: Postgres или память
	store, closeStore, err := repo.Open(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to open task cache", zap.Error(err))
	}
	defer closeStore()

	token, err := cfg.Token()
	if errors.Is(err, config.ErrNoSession) {
		logger.Warn("No API token; run `planner login` or set API_TOKEN")
	} else if err != nil {
		logger.Fatal("Failed to read session", zap.Error(err))
	}
	api := client.New(cfg.APIURL, token, logger)

	tasks := service.NewTaskService(store, api, logger, service.WithLocation(loc))
	timer := pomodoro.New(pomodoro.Config{Work: cfg.WorkDuration(), Break: cfg.BreakDuration()})
	pomo := service.NewPomodoroService(timer, store, logger)

	router := handler.NewRouter(
		handler.NewTaskHandler(tasks, logger),
		handler.NewPomodoroHandler(pomo, logger),
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := worker.NewRunner(logger,
		worker.TickJob(pomo),
		worker.SyncJob(tasks, cfg.SyncInterval, logger),
	)
	runner.Start(ctx)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("api", cfg.APIURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	cancel()
	runner.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully!")
}
