package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/cryptoview/internal/alert"
	"github.com/rickgao/cryptoview/internal/direction"
	"github.com/rickgao/cryptoview/internal/indicator"
	"github.com/rickgao/cryptoview/internal/market"
	"github.com/rickgao/cryptoview/internal/model"
	"github.com/rickgao/cryptoview/internal/movers"
	"github.com/rickgao/cryptoview/internal/queue"
	"github.com/rickgao/cryptoview/internal/store"
)

// Errors
var (
	ErrClosed        = errors.New("dashboard closed")
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Alert messages.
const (
	msgInitialized  = "System initialized successfully"
	msgConnected    = "WebSocket connected"
	msgDisconnected = "WebSocket disconnected - reconnecting..."
	msgSwitched     = "Switched to %s"
	msgVolatility   = "High volatility detected for %s"
)

// DefaultStaleAfter is the data age after which Health reports stale.
const DefaultStaleAfter = 90 * time.Second

// Config holds dashboard configuration.
type Config struct {
	Store         store.Config
	AlertCapacity int           // default: alert.DefaultCapacity
	MoversLimit   int           // default: movers.DefaultLimit
	InitialSymbol model.Symbol  // default: first registry asset
	QueueSize     int           // initial task queue capacity (default: 256)
	StaleAfter    time.Duration // default: DefaultStaleAfter
}

// Anomaly is the most recently detected abnormal move.
type Anomaly struct {
	Symbol     model.Symbol          `json:"symbol"`
	Record     model.PriceRecord     `json:"record"`
	Kind       indicator.AnomalyKind `json:"kind"`
	DetectedAt time.Time             `json:"detected_at"`
}

// Dashboard is the single-threaded core context. Create with New, then
// drive with Run.
type Dashboard struct {
	cfg      Config
	registry *market.Registry
	observer Observer
	logger   *slog.Logger
	tasks    *queue.Queue[func()]

	// Loop-confined state.
	now          func() time.Time
	store        *store.Store
	tracker      *direction.Tracker
	alerts       *alert.Log
	selected     model.Symbol
	movers       []model.MoverEntry
	lastAnomaly  *Anomaly
	connectivity model.Connectivity
	startedAt    time.Time
}

// New creates a dashboard over the tracked assets. observer may be nil.
func New(cfg Config, registry *market.Registry, observer Observer, logger *slog.Logger) (*Dashboard, error) {
	if registry == nil || len(registry.Assets()) == 0 {
		return nil, errors.New("dashboard: empty asset registry")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if cfg.MoversLimit <= 0 {
		cfg.MoversLimit = movers.DefaultLimit
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if cfg.InitialSymbol == "" {
		cfg.InitialSymbol = registry.Assets()[0].Symbol
	}
	cfg.InitialSymbol = model.NormalizeSymbol(string(cfg.InitialSymbol))
	if _, ok := registry.Lookup(cfg.InitialSymbol); !ok {
		return nil, fmt.Errorf("dashboard: initial symbol %s: %w", cfg.InitialSymbol, ErrUnknownSymbol)
	}

	d := &Dashboard{
		cfg:          cfg,
		registry:     registry,
		observer:     observer,
		logger:       logger.With("component", "dashboard"),
		tasks:        queue.New[func()](cfg.QueueSize),
		now:          time.Now,
		store:        store.New(cfg.Store),
		tracker:      direction.NewTracker(),
		alerts:       alert.NewLog(cfg.AlertCapacity),
		selected:     cfg.InitialSymbol,
		connectivity: model.ConnConnecting,
	}
	clock := func() time.Time { return d.now() }
	d.store.WithClock(clock)
	d.alerts.WithClock(clock)
	return d, nil
}

// Run executes posted tasks until ctx is cancelled. Tasks already queued
// at cancellation still run; later posts fail with ErrClosed.
func (d *Dashboard) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, d.tasks.Close)
	defer stop()

	d.startedAt = d.now()
	d.recordAlert(msgInitialized, model.AlertSuccess)
	d.refresh()

	d.logger.Info("dashboard started",
		"selected", d.selected,
		"policy", d.store.Policy(),
		"assets", len(d.registry.Assets()),
	)

	for {
		task, ok := d.tasks.Pop()
		if !ok {
			d.logger.Info("dashboard stopped", "stats", d.tasks.Stats())
			return nil
		}
		task()
	}
}

// post enqueues a task for the loop.
func (d *Dashboard) post(task func()) error {
	if !d.tasks.Push(task) {
		return ErrClosed
	}
	return nil
}

// call runs fn on the loop and waits for its result.
func call[T any](ctx context.Context, d *Dashboard, fn func() T) (T, error) {
	reply := make(chan T, 1)
	if err := d.post(func() { reply <- fn() }); err != nil {
		var zero T
		return zero, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// -----------------------------------------------------------------------------
// Loop-side handlers
// -----------------------------------------------------------------------------

func (d *Dashboard) applyStreamTick(t model.Tick) {
	if !d.store.Apply(t.Symbol, t.Record) {
		d.logger.Debug("stream tick rejected", "symbol", t.Symbol, "policy", d.store.Policy())
		return
	}

	if t.Symbol == d.selected {
		obs := d.tracker.Observe(t.Symbol, t.Record.Price)
		d.emitPrice(t.Symbol, t.Record, direction.Classify(obs))
	}

	d.refreshMovers()
	d.detectAnomaly(t.Symbol, t.Record)
}

func (d *Dashboard) applyPollBatch(batch []model.Tick) {
	applied := 0
	for _, t := range batch {
		if d.store.Apply(t.Symbol, t.Record) {
			applied++
		}
	}
	d.logger.Debug("poll batch applied", "records", len(batch), "applied", applied)

	if rec, ok := d.store.Get(d.selected); ok {
		d.emitPrice(d.selected, rec, direction.Fallback24h(rec.PriceChangePercent24h))
	}
	d.refreshMovers()
}

func (d *Dashboard) selectSymbol(sym model.Symbol) {
	d.selected = sym
	d.tracker.Reset()
	d.recordAlert(fmt.Sprintf(msgSwitched, d.registry.DisplayName(sym)), model.AlertInfo)
	d.refresh()
}

func (d *Dashboard) setConnectivity(c model.Connectivity) {
	if c == d.connectivity {
		return
	}
	d.connectivity = c
	d.observer.OnConnectivityChanged(c)

	switch c {
	case model.ConnConnected:
		d.recordAlert(msgConnected, model.AlertSuccess)
	case model.ConnDisconnected:
		d.recordAlert(msgDisconnected, model.AlertWarning)
	}
}

// refresh renders the selected symbol with a 24h-fallback signal and
// recomputes movers.
func (d *Dashboard) refresh() {
	if rec, ok := d.store.Get(d.selected); ok {
		d.emitPrice(d.selected, rec, direction.Fallback24h(rec.PriceChangePercent24h))
	}
	d.refreshMovers()
}

func (d *Dashboard) emitPrice(sym model.Symbol, rec model.PriceRecord, sig direction.Signal) {
	d.observer.OnPriceUpdated(PriceUpdate{
		Symbol:  sym,
		Record:  rec,
		Signal:  sig,
		Metrics: indicator.Compute(rec),
	})
}

func (d *Dashboard) refreshMovers() {
	d.movers = movers.Rank(d.store.All(), d.cfg.MoversLimit)
	d.observer.OnTopMoversChanged(d.movers)
}

func (d *Dashboard) detectAnomaly(sym model.Symbol, rec model.PriceRecord) {
	kind := indicator.ClassifyAnomaly(rec)
	if kind == indicator.AnomalyNone {
		return
	}

	d.lastAnomaly = &Anomaly{Symbol: sym, Record: rec, Kind: kind, DetectedAt: d.now()}
	d.observer.OnAnomalyDetected(sym, rec, kind)

	if kind == indicator.AnomalyWarning && sym == d.selected {
		d.recordAlert(fmt.Sprintf(msgVolatility, sym), model.AlertWarning)
	}
}

func (d *Dashboard) recordAlert(msg string, kind model.AlertKind) {
	d.observer.OnAlertRecorded(d.alerts.Record(msg, kind))
}
