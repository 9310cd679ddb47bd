package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/cryptoview/internal/dashboard"
	"github.com/rickgao/cryptoview/internal/indicator"
	"github.com/rickgao/cryptoview/internal/model"
)

// Event types.
const (
	TypePrice        = "price"
	TypeMovers       = "movers"
	TypeAnomaly      = "anomaly"
	TypeAlert        = "alert"
	TypeConnectivity = "connectivity"
)

// Client is the subset of the Redis client the publisher needs.
type Client interface {
	Pipeline() redis.Pipeliner
}

// Config holds publisher configuration.
type Config struct {
	Prefix        string        // Channel and key prefix (default: "cryptoview")
	BatchSize     int           // Events per pipeline (default: 100)
	FlushInterval time.Duration // Max time an event waits (default: 250ms)
	MaxPending    int           // Queue bound before dropping (default: 10000)
	SnapshotTTL   time.Duration // TTL of latest-value keys (default: 1h)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:        "cryptoview",
		BatchSize:     100,
		FlushInterval: 250 * time.Millisecond,
		MaxPending:    10000,
		SnapshotTTL:   time.Hour,
	}
}

// Event is the JSON envelope published on every channel.
type Event struct {
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// Metrics tracks publisher activity.
type Metrics struct {
	Published int64
	Flushes   int64
	Errors    int64
	Dropped   int64
}

// pending is one encoded event awaiting flush.
type pending struct {
	channel string
	key     string // latest-value key, empty when not stored
	payload []byte
}

// RedisPublisher publishes dashboard notifications to Redis.
type RedisPublisher struct {
	cfg    Config
	client Client
	logger *slog.Logger
	now    func() time.Time

	batchMu sync.Mutex
	batch   []pending
	metrics Metrics

	kick chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ dashboard.Observer = (*RedisPublisher)(nil)

// NewRedisPublisher creates a publisher. Zero config fields take defaults.
func NewRedisPublisher(cfg Config, client Client, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Prefix == "" {
		cfg.Prefix = def.Prefix
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = def.MaxPending
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = def.SnapshotTTL
	}
	return &RedisPublisher{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "publisher"),
		now:    time.Now,
		batch:  make([]pending, 0, cfg.BatchSize),
		kick:   make(chan struct{}, 1),
	}
}

// Start begins the flush loop.
func (p *RedisPublisher) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.flushLoop()

	p.logger.Info("redis publisher started",
		"prefix", p.cfg.Prefix,
		"batch_size", p.cfg.BatchSize,
		"flush_interval", p.cfg.FlushInterval,
	)
	return nil
}

// Stop shuts down the flush loop and flushes what is pending.
func (p *RedisPublisher) Stop(ctx context.Context) error {
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
	case <-ctx.Done():
		p.logger.Warn("redis publisher stop timed out")
		return ctx.Err()
	}

	// Final flush
	p.flush(ctx)
	p.logger.Info("redis publisher stopped", "published", p.Stats().Published)
	return nil
}

// Stats returns current metrics.
func (p *RedisPublisher) Stats() Metrics {
	p.batchMu.Lock()
	defer p.batchMu.Unlock()
	return p.metrics
}

// Channel returns the full channel name for suffix.
func (p *RedisPublisher) Channel(suffix string) string {
	return p.cfg.Prefix + ":" + suffix
}

func (p *RedisPublisher) OnPriceUpdated(u dashboard.PriceUpdate) {
	sym := string(u.Symbol)
	p.enqueue(TypePrice, p.Channel("price."+sym), p.Channel("price:"+sym), u)
}

func (p *RedisPublisher) OnTopMoversChanged(movers []model.MoverEntry) {
	if movers == nil {
		movers = []model.MoverEntry{}
	}
	p.enqueue(TypeMovers, p.Channel("movers"), p.Channel("movers"), movers)
}

func (p *RedisPublisher) OnAnomalyDetected(sym model.Symbol, rec model.PriceRecord, kind indicator.AnomalyKind) {
	p.enqueue(TypeAnomaly, p.Channel("anomaly"), "", struct {
		Symbol model.Symbol          `json:"symbol"`
		Kind   indicator.AnomalyKind `json:"kind"`
		Record model.PriceRecord     `json:"record"`
	}{sym, kind, rec})
}

func (p *RedisPublisher) OnAlertRecorded(a model.AlertEntry) {
	p.enqueue(TypeAlert, p.Channel("alerts"), "", a)
}

func (p *RedisPublisher) OnConnectivityChanged(c model.Connectivity) {
	p.enqueue(TypeConnectivity, p.Channel("connectivity"), "", struct {
		State model.Connectivity `json:"state"`
	}{c})
}

// enqueue encodes an event and adds it to the batch.
func (p *RedisPublisher) enqueue(typ, channel, key string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		p.logger.Error("encode event", "type", typ, "error", err)
		return
	}
	payload, err := json.Marshal(Event{Type: typ, Time: p.now(), Data: raw})
	if err != nil {
		p.logger.Error("encode envelope", "type", typ, "error", err)
		return
	}

	p.batchMu.Lock()
	if len(p.batch) >= p.cfg.MaxPending {
		copy(p.batch, p.batch[1:])
		p.batch = p.batch[:len(p.batch)-1]
		p.metrics.Dropped++
	}
	p.batch = append(p.batch, pending{channel: channel, key: key, payload: payload})
	shouldFlush := len(p.batch) >= p.cfg.BatchSize
	p.batchMu.Unlock()

	if shouldFlush {
		select {
		case p.kick <- struct{}{}:
		default:
		}
	}
}

// flushLoop flushes on interval or when a batch fills.
func (p *RedisPublisher) flushLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.flush(p.ctx)
		case <-p.kick:
			p.flush(p.ctx)
		}
	}
}

// flush sends the current batch through one pipeline.
func (p *RedisPublisher) flush(ctx context.Context) {
	p.batchMu.Lock()
	if len(p.batch) == 0 {
		p.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := p.batch
	p.batch = make([]pending, 0, p.cfg.BatchSize)
	p.batchMu.Unlock()

	start := time.Now()

	pipe := p.client.Pipeline()
	for _, e := range batch {
		if e.key != "" {
			pipe.Set(ctx, e.key, e.payload, p.cfg.SnapshotTTL)
		}
		pipe.Publish(ctx, e.channel, e.payload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Error("redis pipeline failed", "error", err, "count", len(batch))
		p.batchMu.Lock()
		p.metrics.Errors++
		p.batchMu.Unlock()
		return
	}

	p.batchMu.Lock()
	p.metrics.Published += int64(len(batch))
	p.metrics.Flushes++
	p.batchMu.Unlock()

	p.logger.Debug("flushed events",
		"count", len(batch),
		"duration", time.Since(start),
	)
}
