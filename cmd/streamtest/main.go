// streamtest connects to the ticker stream and prints decoded ticks to console.
// Usage: go run ./cmd/streamtest --config configs/dashboard.example.yaml
//
// With -poll it also runs the REST poller and prints each batch.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/cryptoview/internal/api"
	"github.com/rickgao/cryptoview/internal/config"
	"github.com/rickgao/cryptoview/internal/market"
	"github.com/rickgao/cryptoview/internal/model"
	"github.com/rickgao/cryptoview/internal/poller"
	"github.com/rickgao/cryptoview/internal/queue"
	"github.com/rickgao/cryptoview/internal/stream"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	verbose := flag.Bool("verbose", false, "print full tick JSON")
	poll := flag.Bool("poll", false, "also run the REST poller")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load config
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	registry, err := market.NewRegistry(cfg.MarketAssets())
	if err != nil {
		logger.Error("failed to build asset registry", "error", err)
		os.Exit(1)
	}

	pairs := registry.StreamPairs()
	if len(pairs) == 0 {
		logger.Error("no stream pairs configured")
		os.Exit(1)
	}

	// Ticks cross from the adapter goroutine to the printer through a queue.
	ticks := queue.New[model.Tick](1024)

	adapter := stream.NewAdapter(stream.Config{
		URL:     cfg.Stream.URL,
		Pairs:   pairs,
		Backoff: stream.ConstantBackoff{Delay: cfg.Stream.ReconnectDelay},
	}, stream.TickHandlerFunc(func(t model.Tick) error {
		ticks.Push(t)
		return nil
	}), stream.StateListenerFunc(func(s stream.State) {
		logger.Info("stream state", "state", s)
	}), logger)

	logger.Info("connecting", "url", adapter.URL(), "pairs", len(pairs))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := adapter.Run(ctx); err != nil {
			logger.Error("stream adapter stopped", "error", err)
		}
		ticks.Close()
	}()

	go printTicks(ticks, "STREAM", *verbose)

	var p *poller.Poller
	if *poll {
		client := api.NewClient(cfg.Poller.URL, cfg.Poller.APIKey, api.WithLogger(logger), api.WithRetries(0, 0))
		p = poller.New(poller.Config{
			Interval:   cfg.Poller.Interval,
			Timeout:    cfg.Poller.Timeout,
			VsCurrency: cfg.Poller.VsCurrency,
		}, client, registry, poller.BatchHandlerFunc(func(batch []model.Tick) error {
			for _, t := range batch {
				printTick("POLL", t, *verbose)
			}
			return nil
		}), logger)
		if err := p.Start(ctx); err != nil {
			logger.Error("failed to start poller", "error", err)
			os.Exit(1)
		}
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := adapter.Stats()
				qs := ticks.Stats()
				attrs := []any{
					"state", st.State,
					"session", st.SessionID,
					"connects", st.Connects,
					"frames", st.Frames,
					"parse_errors", st.ParseErrors,
					"queue_len", qs.Len,
					"queue_high_water", qs.HighWater,
				}
				if p != nil {
					ps := p.Stats()
					attrs = append(attrs, "poll_cycles", ps.Cycles, "poll_failures", ps.Failures)
				}
				logger.Info("stats", attrs...)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	if p != nil {
		if err := p.Stop(shutdownCtx); err != nil {
			logger.Warn("poller stop", "error", err)
		}
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("stream adapter did not stop in time")
	}

	logger.Info("shutdown complete")
}

func printTicks(q *queue.Queue[model.Tick], label string, verbose bool) {
	for {
		t, ok := q.Pop()
		if !ok {
			return
		}
		printTick(label, t, verbose)
	}
}

func printTick(label string, t model.Tick, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(t, "", "  ")
		fmt.Printf("[%s] %s\n", label, data)
		return
	}
	r := t.Record
	fmt.Printf("[%s] symbol=%s price=%.4f change=%.2f%% high=%.4f low=%.4f vol=%.2f\n",
		label, t.Symbol, r.Price, r.PriceChangePercent24h, r.High24h, r.Low24h, r.Volume24h)
}
