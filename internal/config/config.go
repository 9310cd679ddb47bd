package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration for a dashboard instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Stream    StreamConfig    `yaml:"stream"`
	Poller    PollerConfig    `yaml:"poller"`
	Assets    []AssetConfig   `yaml:"assets"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Redis     RedisConfig     `yaml:"redis"`
	Health    HealthConfig    `yaml:"health"`
	Log       LogConfig       `yaml:"log"`
	Selection SelectionConfig `yaml:"selection"`
}

// InstanceConfig identifies this instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// StreamConfig holds ticker stream settings.
type StreamConfig struct {
	Disabled          bool          `yaml:"disabled"`
	URL               string        `yaml:"url"`
	Backoff           string        `yaml:"backoff"` // "constant" or "exponential"
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay"` // exponential only
	Jitter            bool          `yaml:"jitter"`              // exponential only
	PingInterval      time.Duration `yaml:"ping_interval"`
	PingTimeout       time.Duration `yaml:"ping_timeout"`
	BufferSize        int           `yaml:"buffer_size"`
}

// PollerConfig holds REST snapshot poller settings.
type PollerConfig struct {
	Disabled   bool          `yaml:"disabled"`
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"` // demo-tier key, optional
	Interval   time.Duration `yaml:"interval"`
	Timeout    time.Duration `yaml:"timeout"`
	VsCurrency string        `yaml:"vs_currency"`
}

// AssetConfig describes one tracked asset.
type AssetConfig struct {
	Symbol      string `yaml:"symbol"`
	Name        string `yaml:"name"`
	Icon        string `yaml:"icon"`
	StreamPair  string `yaml:"stream_pair"`  // empty: poll only
	CoinGeckoID string `yaml:"coingecko_id"` // empty: stream only
}

// ReconcileConfig selects how stream and poll writes are reconciled.
type ReconcileConfig struct {
	Policy      string        `yaml:"policy"` // last_write, newest, stream_preferred
	StreamGrace time.Duration `yaml:"stream_grace"`
}

// AlertsConfig holds alert log settings.
type AlertsConfig struct {
	Capacity int `yaml:"capacity"`
}

// RedisConfig holds the optional event publisher settings.
type RedisConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Addr          string        `yaml:"addr"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	Prefix        string        `yaml:"prefix"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	SnapshotTTL   time.Duration `yaml:"snapshot_ttl"`
}

// HealthConfig holds the health server settings. Port 0 disables it.
type HealthConfig struct {
	Port       int           `yaml:"port"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// SelectionConfig holds display settings.
type SelectionConfig struct {
	Symbol    string `yaml:"symbol"`     // initially selected symbol
	TopMovers int    `yaml:"top_movers"` // ranking length
}

// SlogLevel maps Level to a slog level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
