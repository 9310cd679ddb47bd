// Package movers ranks tracked symbols by the magnitude of their 24h move.
package movers

import (
	"math"
	"sort"

	"github.com/rickgao/cryptoview/internal/model"
	"github.com/rickgao/cryptoview/internal/store"
)

// DefaultLimit is the number of movers shown.
const DefaultLimit = 5

// Rank returns up to limit entries sorted by descending |24h change|.
// Ties keep input order. The ranking is rebuilt from scratch on every call.
func Rank(entries []store.Entry, limit int) []model.MoverEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := make([]model.MoverEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.MoverEntry{
			Symbol:           e.Symbol,
			ChangePercent24h: e.Record.PriceChangePercent24h,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].ChangePercent24h) > math.Abs(out[j].ChangePercent24h)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
