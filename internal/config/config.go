// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost               = "0.0.0.0"
	DefaultPort               = 8080
	DefaultLogLevel           = "INFO"
	DefaultDBFile             = "citetrack.db"
	DefaultRedisStream        = "citetrack:workflow"
	DefaultRelayPollInterval  = time.Second
	DefaultRelayMaxAttempts   = 5
	DefaultScanCron           = "0 6 * * *"
	DefaultAnalyticsCacheSize = 256
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// RelayConfig configures the outbox relay.
type RelayConfig struct {
	pollInterval time.Duration
	maxAttempts  int
}

// NewRelayConfig creates a RelayConfig with defaults.
func NewRelayConfig() RelayConfig {
	return RelayConfig{
		pollInterval: DefaultRelayPollInterval,
		maxAttempts:  DefaultRelayMaxAttempts,
	}
}

// PollInterval returns how often the relay checks the outbox.
func (r RelayConfig) PollInterval() time.Duration { return r.pollInterval }

// MaxAttempts returns the delivery attempts before an event is marked failed.
func (r RelayConfig) MaxAttempts() int { return r.maxAttempts }

// WithPollInterval returns a new config with the specified poll interval.
func (r RelayConfig) WithPollInterval(d time.Duration) RelayConfig {
	if d > 0 {
		r.pollInterval = d
	}
	return r
}

// WithMaxAttempts returns a new config with the specified attempt limit.
func (r RelayConfig) WithMaxAttempts(n int) RelayConfig {
	if n > 0 {
		r.maxAttempts = n
	}
	return r
}

// RedisConfig configures the Redis Streams transport.
// An empty URL means events are written to the log instead.
type RedisConfig struct {
	url    string
	stream string
}

// NewRedisConfig creates a RedisConfig with defaults.
func NewRedisConfig() RedisConfig {
	return RedisConfig{stream: DefaultRedisStream}
}

// URL returns the redis:// connection URL.
func (r RedisConfig) URL() string { return r.url }

// Stream returns the stream key events are appended to.
func (r RedisConfig) Stream() string { return r.stream }

// IsConfigured returns true if a Redis URL is set.
func (r RedisConfig) IsConfigured() bool { return r.url != "" }

// WithURL returns a new config with the specified URL.
func (r RedisConfig) WithURL(url string) RedisConfig {
	r.url = url
	return r
}

// WithStream returns a new config with the specified stream key.
func (r RedisConfig) WithStream(stream string) RedisConfig {
	if stream != "" {
		r.stream = stream
	}
	return r
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host               string
	port               int
	dataDir            string
	dbURL              string
	logLevel           string
	logFormat          LogFormat
	apiKeys            []string
	redis              RedisConfig
	relay              RelayConfig
	scanCron           string
	actionRateLimit    float64
	analyticsCacheSize int
	blocklistFile      string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".citetrack"
	}
	return filepath.Join(home, ".citetrack")
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		dataDir:            dataDir,
		dbURL:              defaultDBURL(dataDir),
		logLevel:           DefaultLogLevel,
		logFormat:          LogFormatPretty,
		apiKeys:            []string{},
		redis:              NewRedisConfig(),
		relay:              NewRelayConfig(),
		scanCron:           DefaultScanCron,
		analyticsCacheSize: DefaultAnalyticsCacheSize,
	}
}

func defaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, DefaultDBFile)
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns the configured API keys.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// Redis returns the event transport config.
func (c AppConfig) Redis() RedisConfig { return c.redis }

// Relay returns the outbox relay config.
func (c AppConfig) Relay() RelayConfig { return c.relay }

// ScanCron returns the cron expression for recurring scans.
func (c AppConfig) ScanCron() string { return c.scanCron }

// ActionRateLimit returns the per-tenant actions per second. Zero disables limiting.
func (c AppConfig) ActionRateLimit() float64 { return c.actionRateLimit }

// AnalyticsCacheSize returns the number of memoized reports.
func (c AppConfig) AnalyticsCacheSize() int { return c.analyticsCacheSize }

// BlocklistFile returns the path to the citation blocklist YAML, if any.
func (c AppConfig) BlocklistFile() string { return c.blocklistFile }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		// Follow the data dir unless a DB URL was set explicitly.
		if c.dbURL == "" || c.dbURL == defaultDBURL(c.dataDir) {
			c.dbURL = defaultDBURL(dir)
		}
		c.dataDir = dir
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithRedisConfig sets the event transport config.
func WithRedisConfig(r RedisConfig) AppConfigOption {
	return func(c *AppConfig) { c.redis = r }
}

// WithRelayConfig sets the outbox relay config.
func WithRelayConfig(r RelayConfig) AppConfigOption {
	return func(c *AppConfig) { c.relay = r }
}

// WithScanCron sets the recurring scan schedule.
func WithScanCron(expr string) AppConfigOption {
	return func(c *AppConfig) { c.scanCron = expr }
}

// WithActionRateLimit sets the per-tenant actions per second.
func WithActionRateLimit(perSecond float64) AppConfigOption {
	return func(c *AppConfig) {
		if perSecond >= 0 {
			c.actionRateLimit = perSecond
		}
	}
}

// WithAnalyticsCacheSize sets the number of memoized reports.
func WithAnalyticsCacheSize(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.analyticsCacheSize = n
		}
	}
}

// WithBlocklistFile sets the citation blocklist path.
func WithBlocklistFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.blocklistFile = path }
}

// NewAppConfigWithOptions creates an AppConfig with the given options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Apply returns a copy of c with opts applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ParseAPIKeys parses a comma-separated string of API keys.
func ParseAPIKeys(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
