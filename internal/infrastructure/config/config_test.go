package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"TILES_APP_NAME",
	"TILES_APP_ENV",
	"TILES_APP_PORT",
	"TILES_APP_TIMEZONE",
	"TILES_DATABASE_DRIVER",
	"TILES_DATABASE_PATH",
	"TILES_DATABASE_HOST",
	"TILES_DATABASE_PORT",
	"TILES_DATABASE_PASSWORD",
	"TILES_DATABASE_SSLMODE",
	"TILES_DATABASE_MAX_OPEN_CONNS",
	"TILES_DATABASE_MAX_IDLE_CONNS",
	"TILES_LOCK_BACKEND",
	"TILES_AUTH_ENABLED",
	"TILES_AUTH_JWT_SECRET",
	"TILES_AUTH_ADMIN_PASSWORD_HASH",
	"TILES_PRINTING_STRATEGY",
	"TILES_STORAGE_TYPE",
	"TILES_STORAGE_S3_BUCKET",
	"TILES_SWAGGER_ENABLED",
	"TILES_SWAGGER_REQUIRE_AUTH",
	"TILES_TELEMETRY_SAMPLING_RATIO",
	"TILES_SCHEDULER_RECONCILE_AT",
}

// isolateEnv clears every key this package reads and restores them afterwards.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		isolateEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "tile-shop-api", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "Asia/Kolkata", cfg.App.Timezone)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "tileshop", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "memory", cfg.Lock.Backend)
		assert.Equal(t, 10*time.Second, cfg.Lock.TTL)
		assert.Equal(t, "overlay", cfg.Printing.Strategy)
		assert.Equal(t, "assets/pdf/template_map.json", cfg.Printing.TemplateMap)
		assert.Equal(t, 120, cfg.Printing.ThumbnailWidth)
		assert.Equal(t, "fs", cfg.Storage.Type)
		assert.False(t, cfg.Auth.Enabled)
		assert.False(t, cfg.Scheduler.Enabled)
		assert.Equal(t, "02:30", cfg.Scheduler.ReconcileAt)
	})

	t.Run("loads values from environment variables with TILES prefix", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_APP_PORT", "9000")
		t.Setenv("TILES_DATABASE_DRIVER", "sqlite")
		t.Setenv("TILES_DATABASE_PATH", ":memory:")
		t.Setenv("TILES_LOCK_BACKEND", "redis")
		t.Setenv("TILES_PRINTING_STRATEGY", "html")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.DSN())
		assert.Equal(t, "redis", cfg.Lock.Backend)
		assert.Equal(t, "html", cfg.Printing.Strategy)
	})

	t.Run("mysql driver defaults to port 3306", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_DATABASE_DRIVER", "mysql")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 3306, cfg.Database.Port)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects unknown printing strategy", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_PRINTING_STRATEGY", "latex")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "printing.strategy")
	})

	t.Run("s3 storage requires a bucket", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_STORAGE_TYPE", "s3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.s3.bucket")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("TILES_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("auth enabled requires secret and hash", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_AUTH_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.jwt_secret")

		t.Setenv("TILES_AUTH_JWT_SECRET", "secret")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.admin_password_hash")
	})

	t.Run("reconcile time must be HH:MM", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_SCHEDULER_RECONCILE_AT", "25:00")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler.reconcile_at")
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_APP_ENV", "production")
		t.Setenv("TILES_DATABASE_PASSWORD", "secure-password")
		t.Setenv("TILES_DATABASE_SSLMODE", "require")
		t.Setenv("TILES_SWAGGER_ENABLED", "false")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("TILES_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("TILES_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("sqlite in production skips postgres checks", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("TILES_APP_ENV", "production")
		t.Setenv("TILES_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.NoError(t, err)
	})

	t.Run("requires a long jwt secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("TILES_AUTH_ENABLED", "true")
		t.Setenv("TILES_AUTH_JWT_SECRET", "short-secret")
		t.Setenv("TILES_AUTH_ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("fails if swagger enabled without protection in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("TILES_SWAGGER_ENABLED", "true")
		t.Setenv("TILES_SWAGGER_REQUIRE_AUTH", "false")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("mysql uses the go-sql-driver format", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "tiles"}
		assert.Equal(t, "u:p@tcp(db:3306)/tiles?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
	})

	t.Run("sqlite returns the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: "tiles.db"}
		assert.Equal(t, "tiles.db", cfg.DSN())
	})
}

func TestAppConfig_Location(t *testing.T) {
	assert.Equal(t, "Asia/Kolkata", AppConfig{Timezone: "Asia/Kolkata"}.Location().String())
	assert.Equal(t, time.Local, AppConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, time.Local, AppConfig{}.Location())
}
