package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/cryptoview/internal/store"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := c.Stream.validate("stream"); err != nil {
		return err
	}
	if err := c.Poller.validate("poller"); err != nil {
		return err
	}
	if c.Stream.Disabled && c.Poller.Disabled {
		return errors.New("stream and poller cannot both be disabled")
	}

	if len(c.Assets) == 0 {
		return errors.New("assets must not be empty")
	}
	symbols := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		prefix := fmt.Sprintf("assets[%d]", i)
		sym := strings.ToUpper(strings.TrimSpace(a.Symbol))
		if sym == "" {
			return fmt.Errorf("%s.symbol is required", prefix)
		}
		if symbols[sym] {
			return fmt.Errorf("%s.symbol %s is duplicated", prefix, sym)
		}
		symbols[sym] = true
		if a.StreamPair == "" && a.CoinGeckoID == "" {
			return fmt.Errorf("%s needs stream_pair or coingecko_id", prefix)
		}
	}

	if _, err := store.ParsePolicy(c.Reconcile.Policy); err != nil {
		return fmt.Errorf("reconcile.policy: %w", err)
	}
	if c.Reconcile.StreamGrace < 0 {
		return errors.New("reconcile.stream_grace must be >= 0")
	}

	if c.Alerts.Capacity < 1 {
		return errors.New("alerts.capacity must be >= 1")
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required when redis is enabled")
		}
		if c.Redis.BatchSize < 1 {
			return errors.New("redis.batch_size must be >= 1")
		}
	}

	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 0 and 65535, got %d", c.Health.Port)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}

	if !symbols[strings.ToUpper(c.Selection.Symbol)] {
		return fmt.Errorf("selection.symbol %s is not a configured asset", c.Selection.Symbol)
	}
	if c.Selection.TopMovers < 1 {
		return errors.New("selection.top_movers must be >= 1")
	}

	return nil
}

func (s *StreamConfig) validate(prefix string) error {
	if s.Disabled {
		return nil
	}
	if s.URL == "" {
		return fmt.Errorf("%s.url is required", prefix)
	}
	switch s.Backoff {
	case BackoffConstant, BackoffExponential:
	default:
		return fmt.Errorf("%s.backoff %q is not one of constant, exponential", prefix, s.Backoff)
	}
	if s.ReconnectDelay <= 0 {
		return fmt.Errorf("%s.reconnect_delay must be > 0", prefix)
	}
	if s.Backoff == BackoffExponential && s.ReconnectMaxDelay < s.ReconnectDelay {
		return fmt.Errorf("%s.reconnect_max_delay (%s) cannot be below reconnect_delay (%s)", prefix, s.ReconnectMaxDelay, s.ReconnectDelay)
	}
	if s.BufferSize < 1 {
		return fmt.Errorf("%s.buffer_size must be >= 1", prefix)
	}
	return nil
}

func (p *PollerConfig) validate(prefix string) error {
	if p.Disabled {
		return nil
	}
	if p.URL == "" {
		return fmt.Errorf("%s.url is required", prefix)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("%s.interval must be > 0", prefix)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("%s.timeout must be > 0", prefix)
	}
	if p.Timeout > p.Interval {
		return fmt.Errorf("%s.timeout (%s) cannot exceed interval (%s)", prefix, p.Timeout, p.Interval)
	}
	return nil
}
