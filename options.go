package citetrack

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/helixml/citetrack/application/service"
	"github.com/helixml/citetrack/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL              string
	dataDir            string
	logger             *slog.Logger
	apiKeys            []string
	redisURL           string
	redisStream        string
	transport          service.Transport
	relayPollPeriod    time.Duration
	relayMaxAttempts   int
	scanSchedule       string
	blocklistFile      string
	analyticsCacheSize int
	background         bool
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:            config.DefaultDataDir(),
		redisStream:        config.DefaultRedisStream,
		relayPollPeriod:    config.DefaultRelayPollInterval,
		relayMaxAttempts:   config.DefaultRelayMaxAttempts,
		scanSchedule:       config.DefaultScanCron,
		analyticsCacheSize: config.DefaultAnalyticsCacheSize,
		background:         true,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures a SQLite database file.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres configures a PostgreSQL database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL configures the database from a sqlite:/// or postgres:// URL.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithDataDir sets the data directory. The default SQLite file lives here.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAPIKeys sets the API keys for HTTP API authentication.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = keys
	}
}

// WithRedis publishes workflow events to a Redis stream.
// An empty stream keeps the default key.
func WithRedis(url, stream string) Option {
	return func(c *clientConfig) {
		c.redisURL = url
		if stream != "" {
			c.redisStream = stream
		}
	}
}

// WithTransport sets a custom event transport. It takes precedence over WithRedis.
func WithTransport(t service.Transport) Option {
	return func(c *clientConfig) {
		c.transport = t
	}
}

// WithRelayPollPeriod sets how often the relay checks the outbox.
// Values <= 0 are ignored.
func WithRelayPollPeriod(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.relayPollPeriod = d
		}
	}
}

// WithRelayMaxAttempts sets the delivery attempts before an event is marked
// failed. Values <= 0 are ignored.
func WithRelayMaxAttempts(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.relayMaxAttempts = n
		}
	}
}

// WithScanSchedule sets the cron expression for recurring scans.
func WithScanSchedule(expr string) Option {
	return func(c *clientConfig) {
		if expr != "" {
			c.scanSchedule = expr
		}
	}
}

// WithBlocklistFile loads extra citation noise names from a YAML file.
func WithBlocklistFile(path string) Option {
	return func(c *clientConfig) {
		c.blocklistFile = path
	}
}

// WithAnalyticsCacheSize sets how many reports are memoized.
// Values <= 0 are ignored.
func WithAnalyticsCacheSize(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.analyticsCacheSize = n
		}
	}
}

// WithoutBackground disables the relay and scheduler. Events still go to the
// outbox and are delivered by whichever process runs the relay.
func WithoutBackground() Option {
	return func(c *clientConfig) {
		c.background = false
	}
}

// WithConfig applies every setting from an AppConfig.
func WithConfig(cfg config.AppConfig) []Option {
	return []Option{
		WithDataDir(cfg.DataDir()),
		WithDatabaseURL(cfg.DBURL()),
		WithAPIKeys(cfg.APIKeys()...),
		WithRedis(cfg.Redis().URL(), cfg.Redis().Stream()),
		WithRelayPollPeriod(cfg.Relay().PollInterval()),
		WithRelayMaxAttempts(cfg.Relay().MaxAttempts()),
		WithScanSchedule(cfg.ScanCron()),
		WithBlocklistFile(cfg.BlocklistFile()),
		WithAnalyticsCacheSize(cfg.AnalyticsCacheSize()),
	}
}

func (c *clientConfig) databaseURL() string {
	if c.dbURL != "" {
		return c.dbURL
	}
	return "sqlite:///" + filepath.Join(c.dataDir, config.DefaultDBFile)
}
