// Package direction tracks the previously displayed price of the selected
// symbol and classifies tick-over-tick movement.
//
// Two kinds of signal exist and are never conflated: a real tick
// comparison (Is24hFallback false), and a cosmetic fallback derived from
// the sign of the 24h change when no previous tick is known
// (Is24hFallback true).
package direction

import "github.com/rickgao/cryptoview/internal/model"

// Direction is the movement between two displayed prices.
type Direction string

const (
	None Direction = "none" // no comparison available
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Signal is the direction handed to the presentation layer.
type Signal struct {
	Direction     Direction `json:"direction"`
	Is24hFallback bool      `json:"is_24h_fallback"`
}

// Observation is the result of one Observe call.
type Observation struct {
	Previous    float64
	HasPrevious bool
	Current     float64
}

// Tracker remembers exactly one price: the last one displayed for the
// selected symbol. It is not safe for concurrent use.
type Tracker struct {
	symbol model.Symbol
	price  float64
	has    bool
}

// NewTracker returns a tracker with nothing remembered.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe returns the remembered price, then remembers price. Observing a
// different symbol than the remembered one behaves like a Reset first.
func (t *Tracker) Observe(sym model.Symbol, price float64) Observation {
	obs := Observation{Current: price}
	if t.has && t.symbol == sym {
		obs.Previous = t.price
		obs.HasPrevious = true
	}

	t.symbol = sym
	t.price = price
	t.has = true
	return obs
}

// Reset forgets the remembered price.
func (t *Tracker) Reset() {
	*t = Tracker{}
}

// Classify turns an observation into a tick signal.
func Classify(obs Observation) Signal {
	if !obs.HasPrevious {
		return Signal{Direction: None}
	}
	switch {
	case obs.Current > obs.Previous:
		return Signal{Direction: Up}
	case obs.Current < obs.Previous:
		return Signal{Direction: Down}
	default:
		return Signal{Direction: Flat}
	}
}

// Fallback24h derives a cosmetic signal from the 24h change sign. It is used
// for renders with no previous tick (initial load, poll refresh, selection).
func Fallback24h(changePercent float64) Signal {
	switch {
	case changePercent > 0:
		return Signal{Direction: Up, Is24hFallback: true}
	case changePercent < 0:
		return Signal{Direction: Down, Is24hFallback: true}
	default:
		return Signal{Direction: None, Is24hFallback: true}
	}
}
