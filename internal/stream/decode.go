package stream

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/cryptoview/internal/model"
)

// QuoteSuffix is stripped from stream symbols ("BTCUSDT" -> "BTC").
const QuoteSuffix = "USDT"

// envelope is a combined-stream frame.
type envelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// tickerData is the 24h rolling ticker payload. Numbers arrive as JSON
// strings; decimal accepts strings and numbers alike.
type tickerData struct {
	Event     string              `json:"e"`
	EventTime int64               `json:"E"` // ms since epoch
	Symbol    string              `json:"s"`
	Close     decimal.NullDecimal `json:"c"`
	High      decimal.NullDecimal `json:"h"`
	Low       decimal.NullDecimal `json:"l"`
	Volume    decimal.NullDecimal `json:"v"`
	Change    decimal.NullDecimal `json:"p"`
	ChangePct decimal.NullDecimal `json:"P"`

	// encoding/json matches keys case-insensitively when no exact field
	// exists; these absorb "C" and "L" so they cannot land in Close/Low.
	CloseTime   json.RawMessage `json:"C"`
	LastTradeID json.RawMessage `json:"L"`
}

// StreamURL builds the combined-stream URL for the given pairs.
func StreamURL(base string, pairs []string) string {
	if base == "" {
		base = DefaultURL
	}
	streams := make([]string, len(pairs))
	for i, p := range pairs {
		streams[i] = strings.ToLower(p) + "@ticker"
	}
	return base + "?streams=" + strings.Join(streams, "/")
}

// DecodeFrame parses one combined-stream frame into a tick. receivedAt
// stamps the record when the frame carries no event time. Errors wrap
// ErrMalformedFrame.
func DecodeFrame(data []byte, receivedAt time.Time) (model.Tick, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Tick{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return model.Tick{}, fmt.Errorf("%w: missing data", ErrMalformedFrame)
	}

	var t tickerData
	if err := json.Unmarshal(env.Data, &t); err != nil {
		return model.Tick{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if t.Symbol == "" {
		return model.Tick{}, fmt.Errorf("%w: missing symbol", ErrMalformedFrame)
	}
	if !t.Close.Valid {
		return model.Tick{}, fmt.Errorf("%w: missing price for %s", ErrMalformedFrame, t.Symbol)
	}

	sym := model.NormalizeSymbol(t.Symbol)
	if trimmed := strings.TrimSuffix(string(sym), QuoteSuffix); trimmed != "" {
		sym = model.Symbol(trimmed)
	}

	lastUpdate := receivedAt
	if t.EventTime > 0 {
		lastUpdate = time.UnixMilli(t.EventTime)
	}

	return model.Tick{
		Symbol: sym,
		Record: model.PriceRecord{
			Price:                 toFloat(t.Close),
			High24h:               toFloat(t.High),
			Low24h:                toFloat(t.Low),
			Volume24h:             toFloat(t.Volume),
			PriceChange24h:        toFloat(t.Change),
			PriceChangePercent24h: toFloat(t.ChangePct),
			LastUpdate:            lastUpdate,
			Source:                model.SourceStream,
		},
	}, nil
}

func toFloat(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.InexactFloat64()
}
