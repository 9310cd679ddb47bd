package market

import (
	"fmt"
	"strings"

	"github.com/rickgao/cryptoview/internal/model"
)

// Asset describes one tracked asset.
type Asset struct {
	Symbol      model.Symbol
	Name        string // Display name (e.g. "Bitcoin")
	Icon        string // Display glyph (e.g. "₿")
	StreamPair  string // Lowercase stream pair, empty when not streamed
	CoinGeckoID string // REST asset id, empty when not polled
}

// DefaultAssets returns the built-in tracked asset set.
func DefaultAssets() []Asset {
	return []Asset{
		{Symbol: "BTC", Name: "Bitcoin", Icon: "₿", StreamPair: "btcusdt", CoinGeckoID: "bitcoin"},
		{Symbol: "ETH", Name: "Ethereum", Icon: "Ξ", StreamPair: "ethusdt", CoinGeckoID: "ethereum"},
		{Symbol: "ADA", Name: "Cardano", Icon: "₳", StreamPair: "adausdt", CoinGeckoID: "cardano"},
		{Symbol: "DOT", Name: "Polkadot", Icon: "●", StreamPair: "dotusdt", CoinGeckoID: "polkadot"},
		{Symbol: "SOL", Name: "Solana", Icon: "◎", StreamPair: "solusdt", CoinGeckoID: "solana"},
		{Symbol: "BNB", Name: "BNB", Icon: "B", StreamPair: "bnbusdt", CoinGeckoID: "binancecoin"},
		{Symbol: "XRP", Name: "XRP", Icon: "✕", StreamPair: "xrpusdt", CoinGeckoID: "ripple"},
		{Symbol: "DOGE", Name: "Dogecoin", Icon: "Ð", StreamPair: "dogeusdt", CoinGeckoID: "dogecoin"},
		{Symbol: "MATIC", Name: "Polygon", Icon: "M", CoinGeckoID: "matic-network"},
		{Symbol: "LTC", Name: "Litecoin", Icon: "Ł", StreamPair: "ltcusdt", CoinGeckoID: "litecoin"},
	}
}

// Registry is an immutable lookup over the tracked assets.
// Safe for concurrent use.
type Registry struct {
	assets   []Asset
	bySymbol map[model.Symbol]int
	byGecko  map[string]int
}

// NewRegistry builds a registry, rejecting empty or duplicate identifiers.
func NewRegistry(assets []Asset) (*Registry, error) {
	r := &Registry{
		assets:   make([]Asset, 0, len(assets)),
		bySymbol: make(map[model.Symbol]int, len(assets)),
		byGecko:  make(map[string]int, len(assets)),
	}

	for _, a := range assets {
		a.Symbol = model.NormalizeSymbol(string(a.Symbol))
		a.StreamPair = strings.ToLower(strings.TrimSpace(a.StreamPair))
		a.CoinGeckoID = strings.TrimSpace(a.CoinGeckoID)

		if a.Symbol == "" {
			return nil, fmt.Errorf("asset with empty symbol")
		}
		if _, dup := r.bySymbol[a.Symbol]; dup {
			return nil, fmt.Errorf("duplicate asset symbol %s", a.Symbol)
		}
		if a.StreamPair == "" && a.CoinGeckoID == "" {
			return nil, fmt.Errorf("asset %s has neither stream_pair nor coingecko_id", a.Symbol)
		}
		if a.CoinGeckoID != "" {
			if _, dup := r.byGecko[a.CoinGeckoID]; dup {
				return nil, fmt.Errorf("duplicate coingecko id %s", a.CoinGeckoID)
			}
			r.byGecko[a.CoinGeckoID] = len(r.assets)
		}
		if a.Name == "" {
			a.Name = string(a.Symbol)
		}

		r.bySymbol[a.Symbol] = len(r.assets)
		r.assets = append(r.assets, a)
	}

	return r, nil
}

// Assets returns all tracked assets in configuration order.
func (r *Registry) Assets() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Lookup returns the asset for a symbol.
func (r *Registry) Lookup(sym model.Symbol) (Asset, bool) {
	i, ok := r.bySymbol[sym]
	if !ok {
		return Asset{}, false
	}
	return r.assets[i], true
}

// SymbolForGeckoID maps a REST asset id to its symbol.
func (r *Registry) SymbolForGeckoID(id string) (model.Symbol, bool) {
	i, ok := r.byGecko[id]
	if !ok {
		return "", false
	}
	return r.assets[i].Symbol, true
}

// StreamPairs returns the stream pairs of all streamed assets.
func (r *Registry) StreamPairs() []string {
	var pairs []string
	for _, a := range r.assets {
		if a.StreamPair != "" {
			pairs = append(pairs, a.StreamPair)
		}
	}
	return pairs
}

// CoinGeckoIDs returns the REST ids of all polled assets.
func (r *Registry) CoinGeckoIDs() []string {
	var ids []string
	for _, a := range r.assets {
		if a.CoinGeckoID != "" {
			ids = append(ids, a.CoinGeckoID)
		}
	}
	return ids
}

// DisplayName returns the asset name, or the symbol when untracked.
func (r *Registry) DisplayName(sym model.Symbol) string {
	if a, ok := r.Lookup(sym); ok {
		return a.Name
	}
	return string(sym)
}
