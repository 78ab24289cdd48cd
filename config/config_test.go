package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORAGE", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("RESET_TOKEN_TTL", "")

	cfg := LoadConfig()

	assert.Equal(t, "mysql", cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 24*time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 10, cfg.MaxPriority)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORAGE", "MEMORY")
	t.Setenv("RESET_TOKEN_TTL", "1h")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := LoadConfig()

	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.True(t, cfg.CookieSecure)
}

func TestGetEnvFromFilePrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")

	assert.Equal(t, "from-file", getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "default"))
}
