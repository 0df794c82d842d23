package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	MongoURI string
	DBName   string

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins []string

	ImageHostURL string
	ImageHostKey string

	MailAPIURL   string
	MailAPIKey   string
	MailFrom     string
	ContactInbox string

	LogLevel  string
	LogFormat string

	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
}

// LoadEnv reads a .env file into the process environment if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{
		Port:           GetEnv("PORT", "8080"),
		GinMode:        GetEnv("GIN_MODE", "release"),
		MongoURI:       GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		AllowedOrigins: splitList(GetEnv("ALLOWED_ORIGINS", "*")),
		ImageHostURL:   GetEnv("IMAGE_HOST_URL", "https://api.imgbb.com/1/upload"),
		ImageHostKey:   os.Getenv("IMAGE_HOST_KEY"),
		MailAPIURL:     os.Getenv("MAIL_API_URL"),
		MailAPIKey:     os.Getenv("MAIL_API_KEY"),
		MailFrom:       GetEnv("MAIL_FROM", "no-reply@localhost"),
		ContactInbox:   os.Getenv("CONTACT_INBOX"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogFormat:      GetEnv("LOG_FORMAT", "json"),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 5*time.Second),
	}

	if cfg.DBName == "" {
		return nil, errors.New("DB_NAME is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Warn("invalid PORT, falling back to default", "PORT", cfg.Port)
		cfg.Port = "8080"
	}
	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog.Level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer, using default", "key", key, "value", raw)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		slog.Warn("invalid number, using default", "key", key, "value", raw)
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
