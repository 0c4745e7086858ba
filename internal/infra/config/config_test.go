package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_ENV", "HTTP_ADDR", "LOG_LEVEL", "STORE_BACKEND", "REDIS_ADDR", "REDIS_DB",
	"MONGO_URI", "KAFKA_BROKERS", "RETRY_BACKOFF", "SESSION_TTL", "BCRYPT_COST",
	"OWNER_EMAIL", "OWNER_PASSWORD", "S3_ENDPOINT", "S3_PUBLIC_ENDPOINT", "S3_USE_SSL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.False(t, cfg.OwnerConfigured())
	assert.True(t, cfg.Dev())
}

func TestLoadParsesValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("BCRYPT_COST", "6")
	t.Setenv("OWNER_EMAIL", "owner@pg.test")
	t.Setenv("OWNER_PASSWORD", "pw")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 6, cfg.BcryptCost)
	assert.True(t, cfg.OwnerConfigured())
	assert.Equal(t, "http://minio:9000", cfg.S3PublicEndpoint)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"backend":     {"STORE_BACKEND", "sqlite"},
		"mongo uri":   {"STORE_BACKEND", "mongo"},
		"retry":       {"RETRY_BACKOFF", "1s,soon"},
		"session ttl": {"SESSION_TTL", "-1h"},
		"redis db":    {"REDIS_DB", "zero"},
		"s3 ssl":      {"S3_USE_SSL", "maybe"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("HTTP_ADDR=:9999\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	// godotenv only fills unset variables
	require.NoError(t, os.Unsetenv("HTTP_ADDR"))

	require.NoError(t, LoadDotEnv(file))
	assert.Equal(t, ":9999", os.Getenv("HTTP_ADDR"))
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
