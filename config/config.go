package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config собирает все настройки процесса в одну структуру,
// которая создаётся один раз на старте и передаётся в конструкторы.
type Config struct {
	ListenAddr      string   // адрес HTTP-сервера
	Threshold       float64  // порог вероятности заражения для опрыскивания
	SprayerEndpoint string   // URL распылителя (ESP32), пустой = не настроен
	HFToken         string   // токен HuggingFace Inference API
	HFModelURL      string   // URL модели HuggingFace
	DatabaseDSN     string   // путь к файлу SQLite
	TelegramToken   string   // токен Telegram-бота, пустой = бот выключен
	UploadDir       string   // каталог для сохранения загруженных файлов
	CORSOrigins     []string // разрешённые origin'ы фронтенда
}

const defaultThreshold = 0.6

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":5000"),
		SprayerEndpoint: os.Getenv("SPRAYER_ENDPOINT"),
		HFToken:         os.Getenv("HF_TOKEN"),
		HFModelURL:      os.Getenv("HF_MODEL_URL"),
		DatabaseDSN:     getEnv("DATABASE_URL", "smart_sprayer.db"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
	}

	threshold := defaultThreshold
	if raw := os.Getenv("THRESHOLD"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid THRESHOLD %q: %w", raw, err)
		}
		threshold = parsed
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("THRESHOLD must be in (0, 1), got %g", threshold)
	}
	cfg.Threshold = threshold

	origins := getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

// RemoteConfigured сообщает, настроен ли удалённый классификатор.
// Токен и URL нужны оба: одно значение без другого считается "не настроено".
func (c *Config) RemoteConfigured() bool {
	return c.HFToken != "" && c.HFModelURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
