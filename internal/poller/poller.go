package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/cryptoview/internal/api"
	"github.com/rickgao/cryptoview/internal/model"
)

// Defaults applied when the snapshot omits optional 24h statistics.
const (
	DefaultHighFactor = 1.05
	DefaultLowFactor  = 0.95
)

// AssetSource provides the REST ids to poll and maps them back to symbols.
type AssetSource interface {
	CoinGeckoIDs() []string
	SymbolForGeckoID(id string) (model.Symbol, bool)
}

// BatchHandler receives one complete poll result.
type BatchHandler interface {
	HandleBatch(batch []model.Tick) error
}

// BatchHandlerFunc is a function adapter for BatchHandler.
type BatchHandlerFunc func([]model.Tick) error

func (f BatchHandlerFunc) HandleBatch(b []model.Tick) error {
	return f(b)
}

// Config holds poller configuration.
type Config struct {
	Interval   time.Duration // Poll interval (default: 30s)
	Timeout    time.Duration // Per-request timeout (default: 25s)
	VsCurrency string        // Quote currency (default: usd)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:   30 * time.Second,
		Timeout:    25 * time.Second,
		VsCurrency: api.DefaultVsCurrency,
	}
}

// Stats is a point-in-time view of poller counters.
type Stats struct {
	Cycles      int64
	Failures    int64
	LastSuccess time.Time
}

// Poller periodically fetches price snapshots via REST API.
type Poller struct {
	cfg     Config
	client  *api.Client
	assets  AssetSource
	handler BatchHandler
	logger  *slog.Logger
	now     func() time.Time

	cycles      atomic.Int64
	failures    atomic.Int64
	lastSuccess atomic.Int64 // unix nanos

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. Zero config fields take their defaults.
func New(cfg Config, client *api.Client, assets AssetSource, handler BatchHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = def.VsCurrency
	}
	return &Poller{
		cfg:     cfg,
		client:  client,
		assets:  assets,
		handler: handler,
		logger:  logger.With("component", "poller"),
		now:     time.Now,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("price poller started",
		"interval", p.cfg.Interval,
		"timeout", p.cfg.Timeout,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("price poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the current counters.
func (p *Poller) Stats() Stats {
	s := Stats{
		Cycles:   p.cycles.Load(),
		Failures: p.failures.Load(),
	}
	if ns := p.lastSuccess.Load(); ns != 0 {
		s.LastSuccess = time.Unix(0, ns)
	}
	return s
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.pollOnce()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// pollOnce fetches all assets in one request and hands the batch over.
// Any failure skips the cycle.
func (p *Poller) pollOnce() {
	start := time.Now()
	p.cycles.Add(1)

	ids := p.assets.CoinGeckoIDs()
	if len(ids) == 0 {
		p.logger.Debug("no assets to poll")
		return
	}

	batch, err := p.fetch(ids)
	if err != nil {
		p.failures.Add(1)
		if p.ctx.Err() == nil {
			p.logger.Warn("poll cycle failed", "err", err)
		}
		return
	}

	if p.handler != nil && len(batch) > 0 {
		if err := p.handler.HandleBatch(batch); err != nil {
			p.failures.Add(1)
			p.logger.Warn("batch handler failed", "err", err)
			return
		}
	}

	p.lastSuccess.Store(p.now().UnixNano())
	p.logger.Debug("poll cycle complete",
		"assets", len(ids),
		"records", len(batch),
		"duration", time.Since(start),
	)
}

// fetch performs the batched request and builds records in id order.
func (p *Poller) fetch(ids []string) ([]model.Tick, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	resp, err := p.client.GetSimplePrice(ctx, api.SimplePriceOptions{
		IDs:          ids,
		VsCurrency:   p.cfg.VsCurrency,
		Include24h:   true,
		IncludeStamp: true,
	})
	if err != nil {
		return nil, err
	}

	received := p.now()
	batch := make([]model.Tick, 0, len(ids))
	for _, id := range ids {
		sym, ok := p.assets.SymbolForGeckoID(id)
		if !ok {
			continue
		}
		q, ok := resp.Quote(id, p.cfg.VsCurrency)
		if !ok {
			continue
		}
		batch = append(batch, model.Tick{Symbol: sym, Record: BuildRecord(q, received)})
	}
	return batch, nil
}

// BuildRecord converts a quote into a record, substituting defaults for
// absent or zero statistics. received stamps quotes without a timestamp.
func BuildRecord(q api.Quote, received time.Time) model.PriceRecord {
	price := q.Price
	change := valueOr(q.Change24h, 0)

	lastUpdate := received
	if q.LastUpdatedAt != nil && *q.LastUpdatedAt > 0 {
		lastUpdate = time.Unix(int64(*q.LastUpdatedAt), 0)
	}

	return model.PriceRecord{
		Price:                 price,
		High24h:               valueOr(q.High24h, price*DefaultHighFactor),
		Low24h:                valueOr(q.Low24h, price*DefaultLowFactor),
		Volume24h:             valueOr(q.Volume24h, 0),
		PriceChange24h:        price * change / 100,
		PriceChangePercent24h: change,
		LastUpdate:            lastUpdate,
		Source:                model.SourcePoll,
	}
}

// valueOr returns *v, or def when v is nil or zero.
func valueOr(v *float64, def float64) float64 {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}
