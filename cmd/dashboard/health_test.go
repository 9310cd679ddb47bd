package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rickgao/cryptoview/internal/dashboard"
	"github.com/rickgao/cryptoview/internal/model"
)

type fakeView struct {
	health   dashboard.Health
	records  map[model.Symbol]model.PriceRecord
	alerts   []model.AlertEntry
	err      error
	selected []model.Symbol
}

func (f *fakeView) Health(context.Context) (dashboard.Health, error) { return f.health, f.err }

func (f *fakeView) Snapshot(_ context.Context, sym model.Symbol) (model.PriceRecord, bool, error) {
	rec, ok := f.records[sym]
	return rec, ok, f.err
}

func (f *fakeView) Alerts(context.Context) ([]model.AlertEntry, error) { return f.alerts, f.err }

func (f *fakeView) Movers(context.Context) ([]model.MoverEntry, error) { return nil, f.err }

func (f *fakeView) Export(context.Context) (dashboard.Export, error) {
	exp := dashboard.Export{Timestamp: time.Unix(0, 0).UTC(), Alerts: f.alerts}
	for sym, rec := range f.records {
		exp.Prices = append(exp.Prices, model.Tick{Symbol: sym, Record: rec})
	}
	return exp, f.err
}

func (f *fakeView) SelectSymbol(sym model.Symbol) error {
	if _, ok := f.records[sym]; !ok {
		return fmt.Errorf("select %s: %w", sym, dashboard.ErrUnknownSymbol)
	}
	f.selected = append(f.selected, sym)
	return nil
}

func newTestHandler(view *fakeView, components map[string]func() any) http.Handler {
	return newHealthHandler(view, components, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestHealth_OK(t *testing.T) {
	view := &fakeView{health: dashboard.Health{Status: dashboard.StatusOK, Symbols: 2}}
	h := newTestHandler(view, map[string]func() any{
		"poller": func() any { return map[string]int{"cycles": 3} },
	})

	rr := do(t, h, http.MethodGet, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != dashboard.StatusOK {
		t.Errorf("status field = %v", body["status"])
	}
	if body["symbols"] != float64(2) {
		t.Errorf("symbols = %v, want 2", body["symbols"])
	}
	if _, ok := body["version"]; !ok {
		t.Error("missing version")
	}
	comps, ok := body["components"].(map[string]any)
	if !ok || comps["poller"] == nil {
		t.Errorf("components = %v", body["components"])
	}
}

func TestHealth_StaleIsUnavailable(t *testing.T) {
	view := &fakeView{health: dashboard.Health{Status: dashboard.StatusStale}}
	rr := do(t, newTestHandler(view, nil), http.MethodGet, "/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestHealth_StartingIsOK(t *testing.T) {
	view := &fakeView{health: dashboard.Health{Status: dashboard.StatusStarting}}
	rr := do(t, newTestHandler(view, nil), http.MethodGet, "/health")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestHealth_Closed(t *testing.T) {
	view := &fakeView{err: dashboard.ErrClosed}
	rr := do(t, newTestHandler(view, nil), http.MethodGet, "/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestDebugSnapshot(t *testing.T) {
	view := &fakeView{records: map[model.Symbol]model.PriceRecord{
		"BTC": {Price: 50000, Source: model.SourceStream},
	}}
	h := newTestHandler(view, nil)

	rr := do(t, h, http.MethodGet, "/debug/snapshot?symbol=btc")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var tick model.Tick
	if err := json.Unmarshal(rr.Body.Bytes(), &tick); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tick.Symbol != "BTC" || tick.Record.Price != 50000 {
		t.Errorf("tick = %+v", tick)
	}

	if rr := do(t, h, http.MethodGet, "/debug/snapshot?symbol=DOGE"); rr.Code != http.StatusNotFound {
		t.Errorf("missing symbol status = %d, want 404", rr.Code)
	}
}

func TestDebugSnapshot_ExportWithoutSymbol(t *testing.T) {
	view := &fakeView{
		records: map[model.Symbol]model.PriceRecord{"ETH": {Price: 3000}},
		alerts:  []model.AlertEntry{{Message: "System initialized successfully"}},
	}
	rr := do(t, newTestHandler(view, nil), http.MethodGet, "/debug/snapshot")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var exp dashboard.Export
	if err := json.Unmarshal(rr.Body.Bytes(), &exp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(exp.Prices) != 1 || exp.Prices[0].Symbol != "ETH" {
		t.Errorf("prices = %+v", exp.Prices)
	}
	if len(exp.Alerts) != 1 {
		t.Errorf("alerts = %d, want 1", len(exp.Alerts))
	}
}

func TestDebugAlerts(t *testing.T) {
	view := &fakeView{alerts: []model.AlertEntry{{Message: "a"}, {Message: "b"}}}
	rr := do(t, newTestHandler(view, nil), http.MethodGet, "/debug/alerts")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var alerts []model.AlertEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(alerts) != 2 || alerts[0].Message != "a" {
		t.Errorf("alerts = %+v", alerts)
	}
}

func TestSelect(t *testing.T) {
	view := &fakeView{records: map[model.Symbol]model.PriceRecord{"SOL": {Price: 100}}}
	h := newTestHandler(view, nil)

	if rr := do(t, h, http.MethodGet, "/select?symbol=SOL"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/select?symbol=sol"); rr.Code != http.StatusAccepted {
		t.Errorf("POST status = %d, want 202", rr.Code)
	}
	if len(view.selected) != 1 || view.selected[0] != "SOL" {
		t.Errorf("selected = %v", view.selected)
	}
	if rr := do(t, h, http.MethodPost, "/select?symbol=XYZ"); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown symbol status = %d, want 400", rr.Code)
	}
}
