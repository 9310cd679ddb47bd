package dashboard

import (
	"context"
	"log/slog"

	"github.com/rickgao/cryptoview/internal/direction"
	"github.com/rickgao/cryptoview/internal/indicator"
	"github.com/rickgao/cryptoview/internal/model"
)

// PriceUpdate is everything needed to render the selected symbol.
type PriceUpdate struct {
	Symbol  model.Symbol      `json:"symbol"`
	Record  model.PriceRecord `json:"record"`
	Signal  direction.Signal  `json:"signal"`
	Metrics indicator.Metrics `json:"metrics"`
}

// Observer receives core notifications. Methods run on the dashboard loop
// and must return quickly.
type Observer interface {
	OnPriceUpdated(u PriceUpdate)
	OnTopMoversChanged(movers []model.MoverEntry)
	OnAnomalyDetected(sym model.Symbol, rec model.PriceRecord, kind indicator.AnomalyKind)
	OnAlertRecorded(a model.AlertEntry)
	OnConnectivityChanged(c model.Connectivity)
}

// NopObserver ignores every notification. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) OnPriceUpdated(PriceUpdate) {}
func (NopObserver) OnTopMoversChanged([]model.MoverEntry) {}
func (NopObserver) OnAnomalyDetected(model.Symbol, model.PriceRecord, indicator.AnomalyKind) {}
func (NopObserver) OnAlertRecorded(model.AlertEntry) {}
func (NopObserver) OnConnectivityChanged(model.Connectivity) {}

// Observers fans every notification out in order.
type Observers []Observer

func (os Observers) OnPriceUpdated(u PriceUpdate) {
	for _, o := range os {
		o.OnPriceUpdated(u)
	}
}

func (os Observers) OnTopMoversChanged(m []model.MoverEntry) {
	for _, o := range os {
		o.OnTopMoversChanged(m)
	}
}

func (os Observers) OnAnomalyDetected(sym model.Symbol, rec model.PriceRecord, kind indicator.AnomalyKind) {
	for _, o := range os {
		o.OnAnomalyDetected(sym, rec, kind)
	}
}

func (os Observers) OnAlertRecorded(a model.AlertEntry) {
	for _, o := range os {
		o.OnAlertRecorded(a)
	}
}

func (os Observers) OnConnectivityChanged(c model.Connectivity) {
	for _, o := range os {
		o.OnConnectivityChanged(c)
	}
}

// LogObserver renders notifications as structured log lines. Price updates
// and mover changes log at debug; everything else at info or warn.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver. nil uses slog.Default().
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger.With("component", "view")}
}

func (l *LogObserver) OnPriceUpdated(u PriceUpdate) {
	l.logger.Debug("price",
		"symbol", u.Symbol,
		"price", u.Record.Price,
		"change_pct", u.Record.PriceChangePercent24h,
		"direction", u.Signal.Direction,
		"fallback", u.Signal.Is24hFallback,
		"ofi", u.Metrics.OrderFlowImbalance,
		"volatility_24h", u.Metrics.Volatility24h,
		"risk", u.Metrics.RiskLevel,
		"liquidity", u.Metrics.LiquidityLevel,
		"source", u.Record.Source,
	)
}

func (l *LogObserver) OnTopMoversChanged(movers []model.MoverEntry) {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	syms := make([]string, len(movers))
	for i, m := range movers {
		syms[i] = string(m.Symbol)
	}
	l.logger.Debug("top movers", "symbols", syms)
}

func (l *LogObserver) OnAnomalyDetected(sym model.Symbol, rec model.PriceRecord, kind indicator.AnomalyKind) {
	level := slog.LevelInfo
	if kind == indicator.AnomalyWarning {
		level = slog.LevelWarn
	}
	l.logger.Log(context.Background(), level, "anomaly detected",
		"symbol", sym,
		"kind", kind,
		"change_pct", rec.PriceChangePercent24h,
	)
}

func (l *LogObserver) OnAlertRecorded(a model.AlertEntry) {
	level := slog.LevelInfo
	if a.Kind == model.AlertWarning || a.Kind == model.AlertError {
		level = slog.LevelWarn
	}
	l.logger.Log(context.Background(), level, a.Message, "kind", a.Kind, "time", a.Time)
}

func (l *LogObserver) OnConnectivityChanged(c model.Connectivity) {
	l.logger.Info("connectivity changed", "state", c)
}
