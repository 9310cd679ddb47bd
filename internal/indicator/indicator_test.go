package indicator

import (
	"math"
	"testing"

	"github.com/rickgao/cryptoview/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rng(price, high, low float64) model.PriceRecord {
	return model.PriceRecord{Price: price, High24h: high, Low24h: low}
}

func TestOrderFlowImbalance(t *testing.T) {
	tests := []struct {
		name string
		r    model.PriceRecord
		want float64
	}{
		{"at low", rng(49000, 51000, 49000), -50},
		{"at high", rng(51000, 51000, 49000), 50},
		{"at midpoint", rng(50000, 51000, 49000), 0},
		{"three quarters", rng(50500, 51000, 49000), 25},
		{"equal range uses unit denominator", rng(100.25, 100, 100), -25},
		{"equal range at price", rng(100, 100, 100), -50},
		{"all zero", model.PriceRecord{}, -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderFlowImbalance(tt.r)
			if !approx(got, tt.want) {
				t.Errorf("OrderFlowImbalance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderFlowImbalance_InvertedRange(t *testing.T) {
	got := OrderFlowImbalance(rng(100, 90, 110))
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("OrderFlowImbalance on inverted range = %v, want finite", got)
	}
	// (100-110)/(90-110) = 0.5
	if !approx(got, 0) {
		t.Errorf("OrderFlowImbalance = %v, want 0", got)
	}
}

func TestVolumeSlope(t *testing.T) {
	r := model.PriceRecord{PriceChangePercent24h: -60}
	if got := VolumeSlope(r); got != -120 {
		t.Errorf("VolumeSlope = %v, want -120", got)
	}
	if got := VolumeSlopeBar(r); got != 100 {
		t.Errorf("VolumeSlopeBar = %v, want 100", got)
	}

	r.PriceChangePercent24h = -3
	if got := VolumeSlopeBar(r); got != 6 {
		t.Errorf("VolumeSlopeBar = %v, want 6", got)
	}
}

func TestBidAskImbalance(t *testing.T) {
	tests := []struct {
		name string
		r    model.PriceRecord
		want float64
	}{
		{"midpoint", rng(50000, 51000, 49000), 50},
		{"above high clamps", rng(52000, 51000, 49000), 100},
		{"below low clamps", rng(48000, 51000, 49000), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BidAskImbalance(tt.r); !approx(got, tt.want) {
				t.Errorf("BidAskImbalance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolatility(t *testing.T) {
	r := rng(50000, 51000, 49000)

	if got := Volatility24h(r); !approx(got, 4.0) {
		t.Errorf("Volatility24h = %v, want 4.0", got)
	}
	if got := Volatility1h(r); !approx(got, 4.0/24) {
		t.Errorf("Volatility1h = %v, want %v", got, 4.0/24)
	}
	if got := Volatility4h(r); !approx(got, 4.0/6) {
		t.Errorf("Volatility4h = %v, want %v", got, 4.0/6)
	}
}

func TestVolatility24h_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		r    model.PriceRecord
		want float64
	}{
		// (h+l)/2 == 0 falls back to price
		{"symmetric range falls back to price", rng(10, 5, -5), 100},
		// average and price both zero fall back to 1
		{"all zero", model.PriceRecord{}, 0},
		{"zero avg and price", rng(0, 1, -1), 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Volatility24h(tt.r); !approx(got, tt.want) {
				t.Errorf("Volatility24h = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRiskForVolatility(t *testing.T) {
	tests := []struct {
		v         float64
		wantLevel Level
		wantScore int
	}{
		{0, LevelLow, 25},
		{2.999, LevelLow, 25},
		{3, LevelMedium, 50},
		{6.999, LevelMedium, 50},
		{7, LevelHigh, 75},
		{40, LevelHigh, 75},
	}

	for _, tt := range tests {
		level, score := RiskForVolatility(tt.v)
		if level != tt.wantLevel || score != tt.wantScore {
			t.Errorf("RiskForVolatility(%v) = %s(%d), want %s(%d)", tt.v, level, score, tt.wantLevel, tt.wantScore)
		}
	}
}

func TestRisk_ZeroPrice(t *testing.T) {
	// range 0.05 over unit price = 5% -> Medium
	level, score := Risk(rng(0, 0.1, 0.05))
	if level != LevelMedium || score != 50 {
		t.Errorf("Risk = %s(%d), want Medium(50)", level, score)
	}
}

func TestLiquidity(t *testing.T) {
	tests := []struct {
		volume    float64
		wantScore float64
		wantLevel Level
	}{
		{0, 0, LevelLow},
		{4_000_000, 40, LevelLow},
		{5_000_000, 50, LevelMedium},
		{7_000_000, 70, LevelMedium},
		{8_000_000, 80, LevelHigh},
		{2e9, 100, LevelHigh},
	}

	for _, tt := range tests {
		score, level := Liquidity(model.PriceRecord{Volume24h: tt.volume})
		if !approx(score, tt.wantScore) || level != tt.wantLevel {
			t.Errorf("Liquidity(%v) = %v %s, want %v %s", tt.volume, score, level, tt.wantScore, tt.wantLevel)
		}
	}
}

func TestClassifyAnomaly(t *testing.T) {
	tests := []struct {
		change float64
		want   AnomalyKind
	}{
		{11, AnomalyWarning},
		{-11, AnomalyWarning},
		{10, AnomalyInfo},
		{6, AnomalyInfo},
		{5, AnomalyNone},
		{4, AnomalyNone},
		{0, AnomalyNone},
	}

	for _, tt := range tests {
		got := ClassifyAnomaly(model.PriceRecord{PriceChangePercent24h: tt.change})
		if got != tt.want {
			t.Errorf("ClassifyAnomaly(%v) = %q, want %q", tt.change, got, tt.want)
		}
	}
}

func TestCompute(t *testing.T) {
	r := model.PriceRecord{
		Price:                 50000,
		High24h:               51000,
		Low24h:                49000,
		Volume24h:             2e9,
		PriceChange24h:        500,
		PriceChangePercent24h: 1.0,
	}

	m := Compute(r)

	if !approx(m.OrderFlowImbalance, 0) {
		t.Errorf("OrderFlowImbalance = %v, want 0", m.OrderFlowImbalance)
	}
	if !approx(m.Volatility24h, 4.0) {
		t.Errorf("Volatility24h = %v, want 4.0", m.Volatility24h)
	}
	if m.RiskLevel != LevelMedium || m.RiskScore != 50 {
		t.Errorf("Risk = %s(%d), want Medium(50)", m.RiskLevel, m.RiskScore)
	}
	if m.LiquidityLevel != LevelHigh {
		t.Errorf("LiquidityLevel = %s, want High", m.LiquidityLevel)
	}
	if m.Anomaly != AnomalyNone {
		t.Errorf("Anomaly = %q, want none", m.Anomaly)
	}
	if m.VolumeSlope != 2 {
		t.Errorf("VolumeSlope = %v, want 2", m.VolumeSlope)
	}
}
