package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sprayer-backend/config"
	"sprayer-backend/internal/api"
	"sprayer-backend/internal/container"
	"sprayer-backend/internal/domain/port"
	"sprayer-backend/internal/infrastructure/hf"
	"sprayer-backend/internal/infrastructure/observability"
	"sprayer-backend/internal/infrastructure/sprayer"
	"sprayer-backend/internal/infrastructure/storage"
	"sprayer-backend/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Открываем журнал анализов
	db, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	analysisRepo := storage.NewGormAnalysisRepository(db)

	// Счётчики конвейера
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Классификаторы: удалённая модель с локальным запасным путём
	remote := hf.NewClient(cfg.HFModelURL, cfg.HFToken)
	local := vision.NewGreenBiasClassifier()
	if !cfg.RemoteConfigured() {
		log.Println("Remote classifier is not configured, using local heuristic only")
	}

	// Распылитель настраивается опционально
	var notifier port.SprayerNotifier
	if cfg.SprayerEndpoint != "" {
		notifier = sprayer.NewHTTPNotifier(cfg.SprayerEndpoint)
	} else {
		log.Println("Sprayer endpoint is not configured, actuation disabled")
	}

	// Собираем сервисы приложения
	userRepo := storage.NewMemoryUserRepository()
	c := container.New(userRepo, analysisRepo, remote, local, notifier, metrics, cfg.Threshold)

	// HTTP-сервер
	srv := api.NewServer(
		c.AnalysisService,
		cfg.CORSOrigins,
		cfg.UploadDir,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	go func() {
		log.Printf("Listening on %s", cfg.ListenAddr)
		if err := srv.Start(cfg.ListenAddr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Telegram-бот запускается только при наличии токена
	if cfg.TelegramToken != "" {
		bot, err := api.NewBot(cfg.TelegramToken, c.UserService, c.AnalysisService)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go func() {
			log.Println("Bot is running...")
			if err := bot.Run(); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal: %v. Shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
