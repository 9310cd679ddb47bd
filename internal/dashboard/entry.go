package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/cryptoview/internal/model"
	"github.com/rickgao/cryptoview/internal/poller"
	"github.com/rickgao/cryptoview/internal/store"
	"github.com/rickgao/cryptoview/internal/stream"
)

// HandleTick posts a stream tick. Implements stream.TickHandler.
func (d *Dashboard) HandleTick(t model.Tick) error {
	return d.post(func() { d.applyStreamTick(t) })
}

// HandleBatch posts a poll batch. Implements poller.BatchHandler.
func (d *Dashboard) HandleBatch(batch []model.Tick) error {
	return d.post(func() { d.applyPollBatch(batch) })
}

// OnStateChange maps stream states to connectivity. Implements
// stream.StateListener.
func (d *Dashboard) OnStateChange(s stream.State) {
	var c model.Connectivity
	switch s {
	case stream.StateConnecting:
		c = model.ConnConnecting
	case stream.StateOpen:
		c = model.ConnConnected
	default:
		c = model.ConnDisconnected
	}
	// A closed queue means shutdown; nothing left to notify.
	_ = d.post(func() { d.setConnectivity(c) })
}

// SelectSymbol switches the displayed symbol. It returns once the switch is
// queued.
func (d *Dashboard) SelectSymbol(sym model.Symbol) error {
	sym = model.NormalizeSymbol(string(sym))
	if _, ok := d.registry.Lookup(sym); !ok {
		return fmt.Errorf("select %s: %w", sym, ErrUnknownSymbol)
	}
	return d.post(func() { d.selectSymbol(sym) })
}

// Snapshot returns the stored record for sym.
func (d *Dashboard) Snapshot(ctx context.Context, sym model.Symbol) (model.PriceRecord, bool, error) {
	type result struct {
		rec model.PriceRecord
		ok  bool
	}
	sym = model.NormalizeSymbol(string(sym))
	r, err := call(ctx, d, func() result {
		rec, ok := d.store.Get(sym)
		return result{rec, ok}
	})
	return r.rec, r.ok, err
}

// Alerts returns the alert log, most recent first.
func (d *Dashboard) Alerts(ctx context.Context) ([]model.AlertEntry, error) {
	return call(ctx, d, d.alerts.All)
}

// Movers returns the current top movers.
func (d *Dashboard) Movers(ctx context.Context) ([]model.MoverEntry, error) {
	return call(ctx, d, func() []model.MoverEntry {
		return append([]model.MoverEntry(nil), d.movers...)
	})
}

// LastAnomaly returns the most recent anomaly, if any.
func (d *Dashboard) LastAnomaly(ctx context.Context) (Anomaly, bool, error) {
	a, err := call(ctx, d, func() *Anomaly {
		if d.lastAnomaly == nil {
			return nil
		}
		cp := *d.lastAnomaly
		return &cp
	})
	if err != nil || a == nil {
		return Anomaly{}, false, err
	}
	return *a, true, nil
}

// Health status values.
const (
	StatusStarting = "starting" // no data yet
	StatusOK       = "ok"
	StatusStale    = "stale" // last update older than StaleAfter
)

// Health summarizes system state for the health endpoint.
type Health struct {
	Status       string             `json:"status"`
	Connectivity model.Connectivity `json:"connectivity"`
	Selected     model.Symbol       `json:"selected"`
	Policy       store.Policy       `json:"policy"`
	Symbols      int                `json:"symbols"`
	DataPoints   int64              `json:"data_points"`
	Rejected     int64              `json:"rejected"`
	LastUpdate   time.Time          `json:"last_update"`
	DataAge      string             `json:"data_age,omitempty"`
	QueueDepth   int                `json:"queue_depth"`
	Uptime       string             `json:"uptime"`
}

// Health returns the current system health.
func (d *Dashboard) Health(ctx context.Context) (Health, error) {
	return call(ctx, d, d.health)
}

func (d *Dashboard) health() Health {
	now := d.now()
	st := d.store.Stats()
	h := Health{
		Status:       StatusStarting,
		Connectivity: d.connectivity,
		Selected:     d.selected,
		Policy:       d.store.Policy(),
		Symbols:      st.Symbols,
		DataPoints:   st.DataPoints,
		Rejected:     st.Rejected,
		LastUpdate:   st.LastUpdate,
		QueueDepth:   d.tasks.Len(),
		Uptime:       now.Sub(d.startedAt).Truncate(time.Second).String(),
	}
	if !st.LastUpdate.IsZero() {
		age := now.Sub(st.LastUpdate)
		h.DataAge = age.Truncate(time.Millisecond).String()
		h.Status = StatusOK
		if age > d.cfg.StaleAfter {
			h.Status = StatusStale
		}
	}
	return h
}

// Export is a point-in-time copy of the dashboard's data.
type Export struct {
	Timestamp time.Time          `json:"timestamp"`
	Selected  model.Symbol       `json:"selected_symbol"`
	Prices    []model.Tick       `json:"prices"`
	TopMovers []model.MoverEntry `json:"top_movers"`
	Alerts    []model.AlertEntry `json:"alerts"`
}

// Export collects every record and alert.
func (d *Dashboard) Export(ctx context.Context) (Export, error) {
	return call(ctx, d, func() Export {
		entries := d.store.All()
		prices := make([]model.Tick, len(entries))
		for i, e := range entries {
			prices[i] = model.Tick{Symbol: e.Symbol, Record: e.Record}
		}
		return Export{
			Timestamp: d.now(),
			Selected:  d.selected,
			Prices:    prices,
			TopMovers: append([]model.MoverEntry(nil), d.movers...),
			Alerts:    d.alerts.All(),
		}
	})
}

var (
	_ stream.TickHandler   = (*Dashboard)(nil)
	_ stream.StateListener = (*Dashboard)(nil)
	_ poller.BatchHandler  = (*Dashboard)(nil)
)
