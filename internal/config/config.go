package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	JWTSecret       string
	TokenTTLMinutes int // 0 keeps tokens valid until logout

	AdminName     string
	AdminEmail    string
	AdminPassword string

	CORSAllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NotifierDriver  string // log | redis | kafka
	NotifierChannel string
	KafkaBrokers    []string
	KafkaTopic      string

	OTelEndpoint string

	WorkerPollMS     int
	WorkerHealthPort int
}

const devJWTSecret = "dev-secret-change-me"

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside the dev environment")

// Load reads the environment. Only APP_ENV=dev may run without JWT_SECRET.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 0),

		AdminName:     getEnv("ADMIN_NAME", "Super Admin"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		NotifierDriver:  getEnv("NOTIFIER_DRIVER", "log"),
		NotifierChannel: getEnv("NOTIFIER_CHANNEL", "catalog.low_stock"),
		KafkaBrokers:    getEnvList("KAFKA_BROKERS", []string{"127.0.0.1:9092"}),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "catalog.low_stock"),

		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		WorkerPollMS:     getEnvInt("WORKER_POLL_MS", 500),
		WorkerHealthPort: getEnvInt("WORKER_HEALTH_PORT", 8081),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "dev" {
			return Config{}, ErrMissingJWTSecret
		}
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "catalog")
	pass := getEnv("DB_PASSWORD", "catalog")
	name := getEnv("DB_NAME", "catalog")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a storage call by d while keeping the caller's cancellation.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
