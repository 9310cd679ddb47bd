package indicator

import (
	"math"

	"github.com/rickgao/cryptoview/internal/model"
)

// Risk thresholds on volatility percent.
const (
	RiskMediumThreshold = 3.0
	RiskHighThreshold   = 7.0
)

// Liquidity thresholds on the liquidity score.
const (
	LiquidityHighThreshold   = 70.0
	LiquidityMediumThreshold = 40.0
)

// Anomaly thresholds on |24h change percent|.
const (
	AnomalyWarningThreshold = 10.0
	AnomalyInfoThreshold    = 5.0
)

// Level is a Low/Medium/High bucket.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// AnomalyKind classifies an abnormal 24h move.
type AnomalyKind string

const (
	AnomalyNone    AnomalyKind = ""
	AnomalyInfo    AnomalyKind = "info"
	AnomalyWarning AnomalyKind = "warning"
)

// Metrics bundles every derived value for one record.
type Metrics struct {
	OrderFlowImbalance float64     `json:"order_flow_imbalance"`
	VolumeSlope        float64     `json:"volume_slope"`
	VolumeSlopeBar     float64     `json:"volume_slope_bar"`
	BidAskImbalance    float64     `json:"bid_ask_imbalance"`
	Volatility1h       float64     `json:"volatility_1h"`
	Volatility4h       float64     `json:"volatility_4h"`
	Volatility24h      float64     `json:"volatility_24h"`
	RiskLevel          Level       `json:"risk_level"`
	RiskScore          int         `json:"risk_score"`
	LiquidityScore     float64     `json:"liquidity_score"`
	LiquidityLevel     Level       `json:"liquidity_level"`
	Anomaly            AnomalyKind `json:"anomaly,omitempty"`
}

// Compute derives all metrics for r.
func Compute(r model.PriceRecord) Metrics {
	risk, score := Risk(r)
	liq, liqLevel := Liquidity(r)
	return Metrics{
		OrderFlowImbalance: OrderFlowImbalance(r),
		VolumeSlope:        VolumeSlope(r),
		VolumeSlopeBar:     VolumeSlopeBar(r),
		BidAskImbalance:    BidAskImbalance(r),
		Volatility1h:       Volatility1h(r),
		Volatility4h:       Volatility4h(r),
		Volatility24h:      Volatility24h(r),
		RiskLevel:          risk,
		RiskScore:          score,
		LiquidityScore:     liq,
		LiquidityLevel:     liqLevel,
		Anomaly:            ClassifyAnomaly(r),
	}
}

// OrderFlowImbalance is the position of price within the 24h range,
// re-centred to roughly [-50, 50].
func OrderFlowImbalance(r model.PriceRecord) float64 {
	return (rangePosition(r) - 0.5) * 100
}

// VolumeSlope is the 24h change percent doubled. The value is unbounded.
func VolumeSlope(r model.PriceRecord) float64 {
	return r.PriceChangePercent24h * 2
}

// VolumeSlopeBar is |VolumeSlope| clamped to [0, 100], for bar widths.
func VolumeSlopeBar(r model.PriceRecord) float64 {
	return clamp(math.Abs(VolumeSlope(r)), 0, 100)
}

// BidAskImbalance is the range position as a percentage, clamped to [0, 100].
func BidAskImbalance(r model.PriceRecord) float64 {
	return clamp(rangePosition(r)*100, 0, 100)
}

// Volatility24h is the 24h range as a percent of the range midpoint. The
// midpoint falls back to price, then to 1, when it is zero.
func Volatility24h(r model.PriceRecord) float64 {
	avg := orOne(orElse((r.High24h+r.Low24h)/2, r.Price))
	return (r.High24h - r.Low24h) / avg * 100
}

// Volatility1h is a linear proxy: Volatility24h / 24.
func Volatility1h(r model.PriceRecord) float64 {
	return Volatility24h(r) / 24
}

// Volatility4h is a linear proxy: Volatility24h / 6.
func Volatility4h(r model.PriceRecord) float64 {
	return Volatility24h(r) / 6
}

// RiskForVolatility buckets a volatility percent into a risk level and score.
func RiskForVolatility(v float64) (Level, int) {
	switch {
	case v < RiskMediumThreshold:
		return LevelLow, 25
	case v < RiskHighThreshold:
		return LevelMedium, 50
	default:
		return LevelHigh, 75
	}
}

// Risk buckets the 24h range as a percent of price (price falls back to 1).
func Risk(r model.PriceRecord) (Level, int) {
	v := (r.High24h - r.Low24h) / orOne(r.Price) * 100
	return RiskForVolatility(v)
}

// Liquidity scores 24h volume on a 0-100 scale: 10 points per million.
func Liquidity(r model.PriceRecord) (float64, Level) {
	score := math.Min(r.Volume24h/1_000_000*10, 100)
	switch {
	case score > LiquidityHighThreshold:
		return score, LevelHigh
	case score > LiquidityMediumThreshold:
		return score, LevelMedium
	default:
		return score, LevelLow
	}
}

// ClassifyAnomaly flags abnormal 24h percent moves.
func ClassifyAnomaly(r model.PriceRecord) AnomalyKind {
	change := math.Abs(r.PriceChangePercent24h)
	switch {
	case change > AnomalyWarningThreshold:
		return AnomalyWarning
	case change > AnomalyInfoThreshold:
		return AnomalyInfo
	default:
		return AnomalyNone
	}
}

// rangePosition is (price-low)/range with a zero range replaced by 1.
func rangePosition(r model.PriceRecord) float64 {
	return (r.Price - r.Low24h) / orOne(r.High24h-r.Low24h)
}

// orElse returns v, or fallback when v is zero or NaN.
func orElse(v, fallback float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return fallback
	}
	return v
}

func orOne(v float64) float64 {
	return orElse(v, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
