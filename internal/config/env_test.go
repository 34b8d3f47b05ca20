package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, "", cfg.DBURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "", cfg.APIKeys)
	assert.Equal(t, "", cfg.Redis.URL)
	assert.Equal(t, time.Second, cfg.Relay.PollInterval)
	assert.Equal(t, 5, cfg.Relay.MaxAttempts)
	assert.Equal(t, 0.0, cfg.ActionRateLimit)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	// Struct tag defaults must be literals, so keep them in step with the constants.
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultRedisStream, cfg.Redis.Stream)
	assert.Equal(t, DefaultRelayPollInterval, cfg.Relay.PollInterval)
	assert.Equal(t, DefaultRelayMaxAttempts, cfg.Relay.MaxAttempts)
	assert.Equal(t, DefaultScanCron, cfg.ScanCron)
	assert.Equal(t, DefaultAnalyticsCacheSize, cfg.AnalyticsCacheSize)
}

func TestLoadFromEnv_OverrideValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("CITETRACK_PORT", "9000")
	t.Setenv("CITETRACK_LOG_FORMAT", "json")
	t.Setenv("CITETRACK_API_KEYS", "k1,k2")
	t.Setenv("CITETRACK_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("CITETRACK_REDIS_STREAM", "brand-events")
	t.Setenv("CITETRACK_RELAY_POLL_INTERVAL", "250ms")
	t.Setenv("CITETRACK_RELAY_MAX_ATTEMPTS", "8")
	t.Setenv("CITETRACK_ACTION_RATE_LIMIT", "1.5")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "k1,k2", cfg.APIKeys)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, "brand-events", cfg.Redis.Stream)
	assert.Equal(t, 250*time.Millisecond, cfg.Relay.PollInterval)
	assert.Equal(t, 8, cfg.Relay.MaxAttempts)
	assert.Equal(t, 1.5, cfg.ActionRateLimit)
}

func TestLoadFromEnv_InvalidValue(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("CITETRACK_PORT", "not-a-port")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestEnvConfig_Normalize(t *testing.T) {
	cfg := EnvConfig{LogLevel: " debug ", LogFormat: "JSON", ScanCron: " @daily "}.Normalize()

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "@daily", cfg.ScanCron)
}

func TestEnvConfig_ToAppConfig(t *testing.T) {
	env := EnvConfig{
		Host:               "127.0.0.1",
		Port:               9001,
		DataDir:            "/data",
		LogLevel:           "DEBUG",
		LogFormat:          "json",
		APIKeys:            "a, b",
		Redis:              RedisEnv{URL: "redis://localhost:6379", Stream: "s"},
		Relay:              RelayEnv{PollInterval: 2 * time.Second, MaxAttempts: 3},
		ScanCron:           "@hourly",
		ActionRateLimit:    4,
		AnalyticsCacheSize: 32,
		BlocklistFile:      "/data/blocklist.yaml",
	}

	cfg := env.ToAppConfig()

	assert.Equal(t, "127.0.0.1:9001", cfg.Addr())
	assert.Equal(t, "/data", cfg.DataDir())
	assert.Equal(t, "sqlite:///"+filepath.Join("/data", DefaultDBFile), cfg.DBURL())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, []string{"a", "b"}, cfg.APIKeys())
	assert.True(t, cfg.Redis().IsConfigured())
	assert.Equal(t, "s", cfg.Redis().Stream())
	assert.Equal(t, 2*time.Second, cfg.Relay().PollInterval())
	assert.Equal(t, 3, cfg.Relay().MaxAttempts())
	assert.Equal(t, "@hourly", cfg.ScanCron())
	assert.Equal(t, 4.0, cfg.ActionRateLimit())
	assert.Equal(t, 32, cfg.AnalyticsCacheSize())
	assert.Equal(t, "/data/blocklist.yaml", cfg.BlocklistFile())
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, LogFormatJSON, parseLogFormat("JSON"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("pretty"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("unknown"))
}

func TestLoadDotEnv_NonExistent(t *testing.T) {
	clearEnvVars(t)

	err := LoadDotEnv("/nonexistent/.env")
	assert.NoError(t, err)
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `CITETRACK_DATA_DIR=/config/data
CITETRACK_LOG_LEVEL=warn
CITETRACK_SCAN_CRON=@every 1h
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	clearEnvVars(t)
	// Values already in the environment beat the file.
	t.Setenv("CITETRACK_SCAN_CRON", "@daily")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "/config/data", cfg.DataDir())
	assert.Equal(t, "WARN", cfg.LogLevel())
	assert.Equal(t, "@daily", cfg.ScanCron())
}

// clearEnvVars unsets all config-related environment variables and restores
// them when the test ends.
func clearEnvVars(t *testing.T) {
	t.Helper()

	vars := []string{
		"HOST",
		"PORT",
		"DATA_DIR",
		"DB_URL",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"API_KEYS",
		"REDIS_URL",
		"REDIS_STREAM",
		"RELAY_POLL_INTERVAL",
		"RELAY_MAX_ATTEMPTS",
		"SCAN_CRON",
		"ACTION_RATE_LIMIT",
		"ANALYTICS_CACHE_SIZE",
		"BLOCKLIST_FILE",
	}

	for _, v := range vars {
		key := EnvPrefix + "_" + v
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(key) })
		}
		_ = os.Unsetenv(key)
	}
}
