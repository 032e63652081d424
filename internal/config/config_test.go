package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "DB_DRIVER", "JWT_TTL_MINUTES", "GEMINI_MODEL", "CORS_ALLOWED_ORIGINS", "DATABASE_URL"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, "gemini-flash-latest", cfg.GeminiModel)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.MimicLoginEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Contains(t, cfg.DBURL, "@db:5432/")
	assert.False(t, cfg.MimicLoginEnabled())
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("PORT", "eighty")

	assert.Equal(t, 8080, getEnvInt("PORT", 8080))
}
