package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/cryptoview/internal/api"
	"github.com/rickgao/cryptoview/internal/config"
	"github.com/rickgao/cryptoview/internal/dashboard"
	"github.com/rickgao/cryptoview/internal/market"
	"github.com/rickgao/cryptoview/internal/model"
	"github.com/rickgao/cryptoview/internal/poller"
	"github.com/rickgao/cryptoview/internal/publish"
	"github.com/rickgao/cryptoview/internal/store"
	"github.com/rickgao/cryptoview/internal/stream"
	"github.com/rickgao/cryptoview/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting dashboard",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"config", *configPath,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("dashboard failed", "error", err)
		os.Exit(1)
	}
	logger.Info("dashboard stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	registry, err := market.NewRegistry(cfg.MarketAssets())
	if err != nil {
		return fmt.Errorf("build asset registry: %w", err)
	}

	policy, err := store.ParsePolicy(cfg.Reconcile.Policy)
	if err != nil {
		return err
	}

	observers := dashboard.Observers{dashboard.NewLogObserver(logger)}

	var publisher *publish.RedisPublisher
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("redis connected", "addr", cfg.Redis.Addr)

		publisher = publish.NewRedisPublisher(publish.Config{
			Prefix:        cfg.Redis.Prefix,
			BatchSize:     cfg.Redis.BatchSize,
			FlushInterval: cfg.Redis.FlushInterval,
			SnapshotTTL:   cfg.Redis.SnapshotTTL,
		}, rdb, logger)
		observers = append(observers, publisher)
	}

	dash, err := dashboard.New(dashboard.Config{
		Store: store.Config{
			Policy:      policy,
			StreamGrace: cfg.Reconcile.StreamGrace,
		},
		AlertCapacity: cfg.Alerts.Capacity,
		MoversLimit:   cfg.Selection.TopMovers,
		InitialSymbol: model.NormalizeSymbol(cfg.Selection.Symbol),
		StaleAfter:    cfg.Health.StaleAfter,
	}, registry, observers, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	components := map[string]func() any{}

	g.Go(func() error {
		return dash.Run(gctx)
	})

	if publisher != nil {
		components["publisher"] = func() any { return publisher.Stats() }
		g.Go(func() error {
			if err := publisher.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			return stopWithTimeout(publisher.Stop)
		})
	}

	if pairs := registry.StreamPairs(); !cfg.Stream.Disabled && len(pairs) > 0 {
		adapter := stream.NewAdapter(stream.Config{
			URL:     cfg.Stream.URL,
			Pairs:   pairs,
			Backoff: backoffFor(cfg.Stream),
			Client: stream.ClientConfig{
				PingInterval: cfg.Stream.PingInterval,
				PingTimeout:  cfg.Stream.PingTimeout,
				BufferSize:   cfg.Stream.BufferSize,
			},
		}, dash, dash, logger)
		components["stream"] = func() any { return adapter.Stats() }
		g.Go(func() error {
			return adapter.Run(gctx)
		})
	} else {
		logger.Warn("stream feed disabled")
	}

	if ids := registry.CoinGeckoIDs(); !cfg.Poller.Disabled && len(ids) > 0 {
		// The next interval is the retry; no in-cycle retries.
		client := api.NewClient(cfg.Poller.URL, cfg.Poller.APIKey,
			api.WithLogger(logger),
			api.WithTimeout(cfg.Poller.Timeout),
			api.WithRetries(0, 0),
		)
		p := poller.New(poller.Config{
			Interval:   cfg.Poller.Interval,
			Timeout:    cfg.Poller.Timeout,
			VsCurrency: cfg.Poller.VsCurrency,
		}, client, registry, dash, logger)
		components["poller"] = func() any { return p.Stats() }
		g.Go(func() error {
			if err := p.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			return stopWithTimeout(p.Stop)
		})
	} else {
		logger.Warn("poll feed disabled")
	}

	if cfg.Health.Port > 0 {
		healthServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Health.Port),
			Handler:           newHealthHandler(dash, components, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("starting health server", "port", cfg.Health.Port)
			if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return stopWithTimeout(healthServer.Shutdown)
		})
	}

	logger.Info("dashboard running",
		"selected", cfg.Selection.Symbol,
		"policy", policy,
		"assets", len(registry.Assets()),
	)

	return g.Wait()
}

// newLogger builds the process logger from config.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// backoffFor maps stream config to a reconnect policy.
func backoffFor(cfg config.StreamConfig) stream.Backoff {
	if cfg.Backoff == config.BackoffExponential {
		return stream.ExponentialBackoff{
			Base:   cfg.ReconnectDelay,
			Max:    cfg.ReconnectMaxDelay,
			Jitter: cfg.Jitter,
		}
	}
	return stream.ConstantBackoff{Delay: cfg.ReconnectDelay}
}

// stopWithTimeout calls stop with a fresh shutdown deadline.
func stopWithTimeout(stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return stop(ctx)
}
