package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Market Data
// -----------------------------------------------------------------------------

// Symbol is an uppercase asset ticker (e.g. "BTC"). It is the identity key
// for every per-asset structure.
type Symbol string

// NormalizeSymbol trims and upper-cases a raw ticker.
func NormalizeSymbol(s string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(s)))
}

func (s Symbol) String() string { return string(s) }

// Source identifies which feed produced a record.
type Source string

const (
	SourceStream Source = "stream" // push-based ticker feed
	SourcePoll   Source = "poll"   // pull-based REST snapshot
)

// PriceRecord is the canonical latest market snapshot for one symbol.
//
// High24h >= Low24h is expected but never enforced; readers must tolerate
// inverted or equal ranges and zero prices.
type PriceRecord struct {
	Price                 float64   `json:"price"`                    // Last traded price
	High24h               float64   `json:"high_24h"`                 // Rolling 24h high
	Low24h                float64   `json:"low_24h"`                  // Rolling 24h low
	Volume24h             float64   `json:"volume_24h"`               // Rolling 24h base-asset volume
	PriceChange24h        float64   `json:"price_change_24h"`         // Absolute 24h change
	PriceChangePercent24h float64   `json:"price_change_percent_24h"` // 24h change in percent points
	LastUpdate            time.Time `json:"last_update"`              // Source event time, or receive time when the source has none
	Source                Source    `json:"source"`                   // Feed that produced the record
}

// Tick pairs a record with the symbol it belongs to, as delivered by a feed.
type Tick struct {
	Symbol Symbol      `json:"symbol"`
	Record PriceRecord `json:"record"`
}

// MoverEntry is one row of the top-movers ranking.
type MoverEntry struct {
	Symbol           Symbol  `json:"symbol"`
	ChangePercent24h float64 `json:"change_percent_24h"`
}

// -----------------------------------------------------------------------------
// Alerts & Connectivity
// -----------------------------------------------------------------------------

// AlertKind classifies a user-visible event.
type AlertKind string

const (
	AlertInfo    AlertKind = "info"
	AlertSuccess AlertKind = "success"
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
)

// AlertEntry is an immutable user-visible event.
type AlertEntry struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Kind      AlertKind `json:"kind"`
	Time      string    `json:"time"` // HH:MM, 24-hour clock
	CreatedAt time.Time `json:"created_at"`
}

// Connectivity is the streaming feed state as shown to the user.
type Connectivity string

const (
	ConnConnecting   Connectivity = "connecting"
	ConnConnected    Connectivity = "connected"
	ConnDisconnected Connectivity = "disconnected"
)
