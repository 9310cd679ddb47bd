package config

import (
	"time"

	"github.com/rickgao/cryptoview/internal/market"
	"github.com/rickgao/cryptoview/internal/model"
)

// Default values for optional configuration fields.
const (
	DefaultInstanceID        = "cryptoview"
	DefaultStreamURL         = "wss://stream.binance.com:9443/stream"
	DefaultBackoff           = BackoffConstant
	DefaultReconnectDelay    = 5 * time.Second
	DefaultReconnectMaxDelay = 60 * time.Second
	DefaultPingInterval      = 30 * time.Second
	DefaultPingTimeout       = 90 * time.Second
	DefaultStreamBufferSize  = 1024
	DefaultPollURL           = "https://api.coingecko.com/api/v3"
	DefaultPollInterval      = 30 * time.Second
	DefaultPollTimeout       = 25 * time.Second
	DefaultVsCurrency        = "usd"
	DefaultReconcilePolicy   = "last_write"
	DefaultStreamGrace       = 60 * time.Second
	DefaultAlertCapacity     = 10
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPrefix       = "cryptoview"
	DefaultRedisBatchSize    = 100
	DefaultRedisFlush        = 250 * time.Millisecond
	DefaultRedisSnapshotTTL  = time.Hour
	DefaultStaleAfter        = 90 * time.Second
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultTopMovers         = 5
)

// Backoff strategies.
const (
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// DefaultAssets returns the built-in asset set in config form.
func DefaultAssets() []AssetConfig {
	defs := market.DefaultAssets()
	out := make([]AssetConfig, len(defs))
	for i, a := range defs {
		out[i] = AssetConfig{
			Symbol:      string(a.Symbol),
			Name:        a.Name,
			Icon:        a.Icon,
			StreamPair:  a.StreamPair,
			CoinGeckoID: a.CoinGeckoID,
		}
	}
	return out
}

// MarketAssets converts the configured assets for market.NewRegistry.
func (c *Config) MarketAssets() []market.Asset {
	out := make([]market.Asset, len(c.Assets))
	for i, a := range c.Assets {
		out[i] = market.Asset{
			Symbol:      model.NormalizeSymbol(a.Symbol),
			Name:        a.Name,
			Icon:        a.Icon,
			StreamPair:  a.StreamPair,
			CoinGeckoID: a.CoinGeckoID,
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Stream defaults
	if c.Stream.URL == "" {
		c.Stream.URL = DefaultStreamURL
	}
	if c.Stream.Backoff == "" {
		c.Stream.Backoff = DefaultBackoff
	}
	if c.Stream.ReconnectDelay == 0 {
		c.Stream.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.PingTimeout == 0 {
		c.Stream.PingTimeout = DefaultPingTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBufferSize
	}

	// Poller defaults
	if c.Poller.URL == "" {
		c.Poller.URL = DefaultPollURL
	}
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}
	if c.Poller.VsCurrency == "" {
		c.Poller.VsCurrency = DefaultVsCurrency
	}

	if len(c.Assets) == 0 {
		c.Assets = DefaultAssets()
	}

	// Reconcile defaults
	if c.Reconcile.Policy == "" {
		c.Reconcile.Policy = DefaultReconcilePolicy
	}
	if c.Reconcile.StreamGrace == 0 {
		c.Reconcile.StreamGrace = DefaultStreamGrace
	}

	if c.Alerts.Capacity == 0 {
		c.Alerts.Capacity = DefaultAlertCapacity
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = DefaultRedisPrefix
	}
	if c.Redis.BatchSize == 0 {
		c.Redis.BatchSize = DefaultRedisBatchSize
	}
	if c.Redis.FlushInterval == 0 {
		c.Redis.FlushInterval = DefaultRedisFlush
	}
	if c.Redis.SnapshotTTL == 0 {
		c.Redis.SnapshotTTL = DefaultRedisSnapshotTTL
	}

	if c.Health.StaleAfter == 0 {
		c.Health.StaleAfter = DefaultStaleAfter
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Selection defaults
	if c.Selection.Symbol == "" {
		c.Selection.Symbol = c.Assets[0].Symbol
	}
	if c.Selection.TopMovers == 0 {
		c.Selection.TopMovers = DefaultTopMovers
	}
}
