package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CITETRACK"

// EnvConfig holds all environment-based configuration.
// Field names map to environment variables with the CITETRACK_ prefix.
// Nested structs use underscore delimiter (e.g., CITETRACK_REDIS_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.citetrack
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/citetrack.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// Redis configures the event transport.
	Redis RedisEnv `envconfig:"REDIS"`

	// Relay configures outbox delivery.
	Relay RelayEnv `envconfig:"RELAY"`

	// ScanCron schedules recurring scans for unpaused brands.
	// Env: SCAN_CRON (default: 0 6 * * *)
	ScanCron string `envconfig:"SCAN_CRON" default:"0 6 * * *"`

	// ActionRateLimit is the per-tenant action rate in requests per second.
	// Env: ACTION_RATE_LIMIT (default: 0, unlimited)
	ActionRateLimit float64 `envconfig:"ACTION_RATE_LIMIT" default:"0"`

	// AnalyticsCacheSize is the number of memoized reports.
	// Env: ANALYTICS_CACHE_SIZE (default: 256)
	AnalyticsCacheSize int `envconfig:"ANALYTICS_CACHE_SIZE" default:"256"`

	// BlocklistFile is a YAML file of citation domains to ignore.
	// Env: BLOCKLIST_FILE
	BlocklistFile string `envconfig:"BLOCKLIST_FILE"`
}

// RedisEnv holds environment configuration for the Redis transport.
type RedisEnv struct {
	// URL is the redis:// connection URL. Empty logs events instead.
	// Env: REDIS_URL
	URL string `envconfig:"URL"`

	// Stream is the stream key.
	// Env: REDIS_STREAM (default: citetrack:workflow)
	Stream string `envconfig:"STREAM" default:"citetrack:workflow"`
}

// RelayEnv holds environment configuration for the outbox relay.
type RelayEnv struct {
	// PollInterval is how often the outbox is checked.
	// Env: RELAY_POLL_INTERVAL (default: 1s)
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1s"`

	// MaxAttempts is the delivery attempts before an event is marked failed.
	// Env: RELAY_MAX_ATTEMPTS (default: 5)
	MaxAttempts int `envconfig:"MAX_ATTEMPTS" default:"5"`
}

// LoadFromEnv loads configuration from CITETRACK_ environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix(EnvPrefix)
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "APP" would require APP_DATA_DIR instead of CITETRACK_DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize trims whitespace and canonicalizes case-insensitive values.
func (e EnvConfig) Normalize() EnvConfig {
	e.Host = strings.TrimSpace(e.Host)
	e.DataDir = strings.TrimSpace(e.DataDir)
	e.DBURL = strings.TrimSpace(e.DBURL)
	e.LogLevel = strings.ToUpper(strings.TrimSpace(e.LogLevel))
	e.LogFormat = strings.ToLower(strings.TrimSpace(e.LogFormat))
	e.Redis.URL = strings.TrimSpace(e.Redis.URL)
	e.Redis.Stream = strings.TrimSpace(e.Redis.Stream)
	e.ScanCron = strings.TrimSpace(e.ScanCron)
	e.BlocklistFile = strings.TrimSpace(e.BlocklistFile)
	return e
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	// Apply overrides from environment
	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}

	cfg = applyOption(cfg, WithRedisConfig(e.Redis.ToRedisConfig()))
	cfg = applyOption(cfg, WithRelayConfig(e.Relay.ToRelayConfig()))

	if e.ScanCron != "" {
		cfg = applyOption(cfg, WithScanCron(e.ScanCron))
	}
	cfg = applyOption(cfg, WithActionRateLimit(e.ActionRateLimit))
	cfg = applyOption(cfg, WithAnalyticsCacheSize(e.AnalyticsCacheSize))
	if e.BlocklistFile != "" {
		cfg = applyOption(cfg, WithBlocklistFile(e.BlocklistFile))
	}

	return cfg
}

// ToRedisConfig converts RedisEnv to RedisConfig.
func (r RedisEnv) ToRedisConfig() RedisConfig {
	return NewRedisConfig().WithURL(r.URL).WithStream(r.Stream)
}

// ToRelayConfig converts RelayEnv to RelayConfig.
func (r RelayEnv) ToRelayConfig() RelayConfig {
	return NewRelayConfig().
		WithPollInterval(r.PollInterval).
		WithMaxAttempts(r.MaxAttempts)
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
