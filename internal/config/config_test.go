package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-night/internal/platform/logging"
)

// isolateEnv points the env file at nothing and sets APP_ENV, so tests do not
// pick up a developer's .env.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("APP_ENV", EnvDev)
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)
	for _, key := range []string{
		"STORE_DRIVER", "ADMIN_USER_IDS", "REALTIME_OUTBOX_SIZE", "REALTIME_WRITE_TIMEOUT",
		"REALTIME_CHANGE_FEED_ENABLED", "DB_MAX_OPEN_CONNS", "CACHE_ENABLED", "CACHE_TTL",
		"CORS_ALLOWED_ORIGINS", "PPROF_ADDR", "APP_HTTP_ADDR",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Development())
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.NotEmpty(t, cfg.ServiceName)
	assert.Equal(t, 20, cfg.DBMaxOpenConns)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.AdminUserIDs)
	assert.Equal(t, 64, cfg.RealtimeOutboxSize)
	assert.Equal(t, 5*time.Second, cfg.RealtimeWriteTimeout)
	assert.False(t, cfg.RealtimeChangeFeedEnabled)
	assert.Equal(t, ":6060", cfg.PprofAddr)
}

func TestLoadParsesValues(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "memory store is case insensitive",
			env:  map[string]string{"STORE_DRIVER": " Memory "},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
			},
		},
		{
			name: "admin ids drop blanks",
			env:  map[string]string{"ADMIN_USER_IDS": " admin-1, ,admin-2 "},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []string{"admin-1", "admin-2"}, cfg.AdminUserIDs)
			},
		},
		{
			name: "cors origins",
			env:  map[string]string{"CORS_ALLOWED_ORIGINS": " https://a.example.com, http://localhost:5173 "},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []string{"https://a.example.com", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
			},
		},
		{
			name: "change feed on postgres",
			env: map[string]string{
				"STORE_DRIVER":                 StoreDriverPostgres,
				"REALTIME_CHANGE_FEED_ENABLED": "true",
				"REALTIME_CHANGE_FEED_CHANNEL": "night_changes",
			},
			check: func(t *testing.T, cfg Config) {
				assert.True(t, cfg.RealtimeChangeFeedEnabled)
				assert.Equal(t, "night_changes", cfg.RealtimeChangeFeedChannel)
			},
		},
		{
			name: "uptrace dsn from otlp headers",
			env: map[string]string{
				"UPTRACE_ENABLED":            "true",
				"UPTRACE_DSN":                "",
				"OTEL_EXPORTER_OTLP_HEADERS": `other=x, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`,
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "https://token@api.uptrace.dev?grpc=4317", cfg.UptraceDSN)
			},
		},
		{
			name: "betterstack",
			env: map[string]string{
				"BETTERSTACK_ENABLED":   "true",
				"BETTERSTACK_ENDPOINT":  "in.logs.betterstack.com",
				"BETTERSTACK_TOKEN":     "token-123",
				"BETTERSTACK_TIMEOUT":   "4s",
				"BETTERSTACK_MIN_LEVEL": "warn",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "in.logs.betterstack.com", cfg.BetterStackEndpoint)
				assert.Equal(t, "token-123", cfg.BetterStackToken)
				assert.Equal(t, 4*time.Second, cfg.BetterStackTimeout)
				assert.Equal(t, logging.LevelWarn, cfg.BetterStackMinLevel)
			},
		},
		{
			name: "pyroscope app name defaults to service name",
			env: map[string]string{
				"APP_SERVICE_NAME":         "league-night-api-test",
				"PYROSCOPE_ENABLED":        "true",
				"PYROSCOPE_SERVER_ADDRESS": "http://localhost:4040",
				"PYROSCOPE_APP_NAME":       "",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "league-night-api-test", cfg.PyroscopeAppName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown app env":             {"APP_ENV": "invalid"},
		"unknown store driver":        {"STORE_DRIVER": "sqlite"},
		"zero outbox":                 {"REALTIME_OUTBOX_SIZE": "0"},
		"bad write timeout":           {"REALTIME_WRITE_TIMEOUT": "soon"},
		"change feed on memory store": {"STORE_DRIVER": StoreDriverMemory, "REALTIME_CHANGE_FEED_ENABLED": "true"},
		"uptrace without dsn":         {"UPTRACE_ENABLED": "true", "UPTRACE_DSN": "", "OTEL_EXPORTER_OTLP_HEADERS": ""},
		"betterstack without url":     {"BETTERSTACK_ENABLED": "true", "BETTERSTACK_ENDPOINT": ""},
		"pyroscope without server":    {"PYROSCOPE_ENABLED": "true", "PYROSCOPE_SERVER_ADDRESS": ""},
		"non numeric max conns":       {"DB_MAX_OPEN_CONNS": "many"},
		"zero max conns":              {"DB_MAX_OPEN_CONNS": "0"},
		"bad cache ttl":               {"CACHE_TTL": "bad"},
		"negative cache ttl":          {"CACHE_TTL": "-1s"},
		"bad bool":                    {"CACHE_ENABLED": "sometimes"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadReportsEveryInvalidKey(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CACHE_TTL", "bad")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
	assert.Contains(t, err.Error(), "DB_MAX_OPEN_CONNS")
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_SERVICE_NAME=from-dotenv\nADMIN_USER_IDS=admin-9\n"), 0o600))

	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_ENV_FILE", path)
	// Registered so the value godotenv sets is restored after the test.
	t.Setenv("APP_SERVICE_NAME", "")
	require.NoError(t, os.Unsetenv("APP_SERVICE_NAME"))
	t.Setenv("ADMIN_USER_IDS", "admin-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.ServiceName)
	assert.Equal(t, []string{"admin-1"}, cfg.AdminUserIDs, "process env wins over the env file")
}

func TestLoadIgnoresMissingDotEnvFile(t *testing.T) {
	isolateEnv(t)
	_, err := Load()
	assert.NoError(t, err)
}
