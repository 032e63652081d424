package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// store
	DBDriver   string // postgres | sqlite | memory
	DBURL      string
	SQLitePath string

	// session tokens
	JWTSecret string
	JWTTTL    time.Duration

	// google login
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// chat relay
	GeminiAPIKey string
	GeminiModel  string
	ChatTimeout  time.Duration

	// oauth state store, memory when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTelEndpoint string

	CORSAllowedOrigins []string
	PagesDir           string
	MaxBodyBytes       int64

	// demo account seeded at startup, used by the mimic login bypass
	DemoEmail    string
	DemoPassword string
	DemoName     string
	MimicUserID  int64
}

func Load() Config {
	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBURL:      buildDBURL(),
		SQLitePath: getEnv("SQLITE_PATH", "wellbot.db"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_MINUTES", 60)) * time.Minute,

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/google/callback"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-flash-latest"),
		ChatTimeout:  time.Duration(getEnvInt("CHAT_TIMEOUT_SECONDS", 20)) * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8080"}),
		PagesDir:           getEnv("PAGES_DIR", "web/pages"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 10<<20)),

		DemoEmail:    getEnv("DEMO_EMAIL", ""),
		DemoPassword: getEnv("DEMO_PASSWORD", ""),
		DemoName:     getEnv("DEMO_NAME", "Demo User"),
		MimicUserID:  int64(getEnvInt("MIMIC_USER_ID", 1)),
	}
}

// MimicLoginEnabled reports whether the test-only login bypass is mounted.
func (c Config) MimicLoginEnabled() bool {
	return c.Env != "prod"
}

// Warn logs the settings that leave a feature degraded rather than broken.
func (c Config) Warn(log *slog.Logger) {
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		log.Warn("google login not configured", "missing", "GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET")
	}
	if c.GeminiAPIKey == "" {
		log.Warn("gemini api key not set, chat will answer with a fallback message")
	}
	if c.Env == "prod" && c.JWTSecret == "dev-secret-change-me" {
		log.Warn("JWT_SECRET is the development default")
	}
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "wellbot")
	pass := getEnv("DB_PASSWORD", "wellbot")
	name := getEnv("DB_NAME", "wellbot")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
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
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
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

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
