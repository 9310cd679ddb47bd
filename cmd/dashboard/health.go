package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/cryptoview/internal/dashboard"
	"github.com/rickgao/cryptoview/internal/model"
	"github.com/rickgao/cryptoview/internal/version"
)

const queryTimeout = 2 * time.Second

// dashboardView is the part of the dashboard served over HTTP.
type dashboardView interface {
	Health(ctx context.Context) (dashboard.Health, error)
	Snapshot(ctx context.Context, sym model.Symbol) (model.PriceRecord, bool, error)
	Alerts(ctx context.Context) ([]model.AlertEntry, error)
	Movers(ctx context.Context) ([]model.MoverEntry, error)
	Export(ctx context.Context) (dashboard.Export, error)
	SelectSymbol(sym model.Symbol) error
}

type healthResponse struct {
	dashboard.Health
	Version    version.Info   `json:"version"`
	Components map[string]any `json:"components,omitempty"`
}

// newHealthHandler serves /health and the /debug endpoints.
// components maps a name to a stats getter and must not change after the call.
func newHealthHandler(view dashboardView, components map[string]func() any, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		h, err := view.Health(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := healthResponse{Health: h, Version: version.Get()}
		if len(components) > 0 {
			resp.Components = make(map[string]any, len(components))
			for name, stats := range components {
				resp.Components[name] = stats()
			}
		}
		status := http.StatusOK
		if h.Status == dashboard.StatusStale {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp, logger)
	})

	mux.HandleFunc("/debug/snapshot", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		raw := r.URL.Query().Get("symbol")
		if raw == "" {
			exp, err := view.Export(ctx)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, exp, logger)
			return
		}

		sym := model.NormalizeSymbol(raw)
		rec, ok, err := view.Snapshot(ctx, sym)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			http.Error(w, "no data for "+string(sym), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, model.Tick{Symbol: sym, Record: rec}, logger)
	})

	mux.HandleFunc("/debug/alerts", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		alerts, err := view.Alerts(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, alerts, logger)
	})

	mux.HandleFunc("/debug/movers", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		movers, err := view.Movers(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, movers, logger)
	})

	mux.HandleFunc("/select", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		sym := model.NormalizeSymbol(r.URL.Query().Get("symbol"))
		if err := view.SelectSymbol(sym); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrUnknownSymbol):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, dashboard.ErrClosed):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		http.Error(w, "dashboard busy", http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
