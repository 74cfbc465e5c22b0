package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, ":9091", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, "tickets", cfg.Kafka.Topic)
	assert.Equal(t, 3, cfg.Purchase.CodeAttempts)
	assert.Equal(t, "dev-secret", cfg.Secret())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHOP_STORE_DRIVER", "sqlite")
	t.Setenv("SHOP_STORE_DSN", "file:shop.db")
	t.Setenv("SHOP_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("SHOP_AUTH_TOKEN_TTL", "30m")
	t.Setenv("SHOP_KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "file:shop.db", cfg.Store.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "a:9092,b:9092", cfg.Kafka.Brokers)
	assert.Equal(t, "s3cret", cfg.Secret())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":8080\"\npurchase:\n  code_attempts: 5\n"), 0o600))

	v := NewViper()
	v.Set("config", path)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5, cfg.Purchase.CodeAttempts)
}

func TestValidate(t *testing.T) {
	t.Setenv("SHOP_STORE_DRIVER", "postgres")
	_, err := Load(NewViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.dsn")
	assert.Contains(t, err.Error(), "jwt_secret")

	t.Setenv("SHOP_STORE_DRIVER", "mongo")
	_, err = Load(NewViper())
	assert.ErrorContains(t, err, "unknown store.driver")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHOP_HTTP_ADDR=:7070\n"), 0o600))
	t.Setenv("SHOP_HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("SHOP_HTTP_ADDR"))

	LoadDotEnv(path)
	t.Cleanup(func() { _ = os.Unsetenv("SHOP_HTTP_ADDR") })

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	t.Setenv("SHOP_HTTP_CORS_ORIGINS", "http://a.io,http://b.io")
	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.io", "http://b.io"}, cfg.HTTP.CORSOrigins)
}
