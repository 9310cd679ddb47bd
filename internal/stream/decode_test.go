package stream

import (
	"errors"
	"testing"
	"time"

	"github.com/rickgao/cryptoview/internal/model"
)

func TestDecodeFrame(t *testing.T) {
	recv := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("string numbers", func(t *testing.T) {
		frame := `{"stream":"btcusdt@ticker","data":{"e":"24hrTicker","E":1714564800000,"s":"BTCUSDT",
			"p":"1000.50","P":"1.667","c":"61000.00","h":"62000.00","l":"59000.00","v":"12345.6",
			"C":1714564799999,"L":3512345678,"O":1714478400000}}`

		tick, err := DecodeFrame([]byte(frame), recv)
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}

		if tick.Symbol != "BTC" {
			t.Errorf("Symbol = %q, want BTC", tick.Symbol)
		}
		want := model.PriceRecord{
			Price:                 61000,
			High24h:               62000,
			Low24h:                59000,
			Volume24h:             12345.6,
			PriceChange24h:        1000.5,
			PriceChangePercent24h: 1.667,
			LastUpdate:            time.UnixMilli(1714564800000),
			Source:                model.SourceStream,
		}
		if tick.Record != want {
			t.Errorf("Record = %+v\nwant %+v", tick.Record, want)
		}
	})

	t.Run("bare numbers and no event time", func(t *testing.T) {
		frame := `{"stream":"ethusdt@ticker","data":{"s":"ETHUSDT","c":3000,"h":3100,"l":2900,"v":10,"p":-30,"P":-1}}`

		tick, err := DecodeFrame([]byte(frame), recv)
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		if tick.Symbol != "ETH" || tick.Record.Price != 3000 || tick.Record.PriceChangePercent24h != -1 {
			t.Errorf("tick = %+v", tick)
		}
		if !tick.Record.LastUpdate.Equal(recv) {
			t.Errorf("LastUpdate = %v, want receive time", tick.Record.LastUpdate)
		}
	})

	t.Run("symbol without quote suffix", func(t *testing.T) {
		tick, err := DecodeFrame([]byte(`{"data":{"s":"ethbtc","c":"0.05"}}`), recv)
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		if tick.Symbol != "ETHBTC" {
			t.Errorf("Symbol = %q, want ETHBTC", tick.Symbol)
		}
	})

	malformed := []struct {
		name  string
		frame string
	}{
		{"not json", `not json`},
		{"truncated", `{"stream":"btcusdt@ticker","data":{"s":"BTC`},
		{"missing data", `{"stream":"btcusdt@ticker"}`},
		{"null data", `{"stream":"btcusdt@ticker","data":null}`},
		{"missing symbol", `{"data":{"c":"1"}}`},
		{"missing price", `{"data":{"s":"BTCUSDT","h":"2"}}`},
		{"unparseable price", `{"data":{"s":"BTCUSDT","c":"abc"}}`},
		{"unparseable high", `{"data":{"s":"BTCUSDT","c":"1","h":"--"}}`},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(tt.frame), recv)
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("error = %v, want ErrMalformedFrame", err)
			}
		})
	}
}

func TestStreamURL(t *testing.T) {
	got := StreamURL("", []string{"btcusdt", "ETHUSDT"})
	want := "wss://stream.binance.com:9443/stream?streams=btcusdt@ticker/ethusdt@ticker"
	if got != want {
		t.Errorf("StreamURL() = %q, want %q", got, want)
	}
}
