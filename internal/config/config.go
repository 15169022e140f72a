package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	LLM      LLMConfig
	Coach    CoachConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type LLMConfig struct {
	Provider  string // "openai" or "ollama"
	BaseURL   string
	APIKey    string
	ModelName string
}

type CoachConfig struct {
	SummaryBatchN int
	SummaryIdleMs int
	DebounceMs    int
	RecentWindow  int
	RevealDelayMs int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "RunCoach"),
		},
		LLM: LLMConfig{
			Provider:  getEnv("LLM_PROVIDER", "ollama"),
			BaseURL:   getEnv("LLM_BASE_URL", ""),
			APIKey:    getEnv("LLM_API_KEY", ""),
			ModelName: getEnv("LLM_MODEL", "llama3"),
		},
		Coach: CoachConfig{
			SummaryBatchN: getEnvAsInt("COACH_SUMMARY_BATCH_N", 3),
			SummaryIdleMs: getEnvAsInt("COACH_SUMMARY_IDLE_MS", 12000),
			DebounceMs:    getEnvAsInt("COACH_DEBOUNCE_MS", 300),
			RecentWindow:  getEnvAsInt("COACH_RECENT_WINDOW", 5),
			RevealDelayMs: getEnvAsInt("COACH_REVEAL_DELAY_MS", 400),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
