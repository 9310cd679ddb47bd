package store

import (
	"time"

	"github.com/rickgao/cryptoview/internal/model"
)

// DefaultStreamGrace is how long a stream record shields its symbol from
// poll overwrites under PolicyStreamPreferred.
const DefaultStreamGrace = 60 * time.Second

// Entry is one (symbol, record) pair.
type Entry struct {
	Symbol model.Symbol
	Record model.PriceRecord
}

// Config holds store configuration.
type Config struct {
	Policy      Policy
	StreamGrace time.Duration
}

// Stats summarizes store activity.
type Stats struct {
	Symbols    int
	DataPoints int64
	Rejected   int64
	LastUpdate time.Time
}

// Store maps each symbol to its latest record.
type Store struct {
	cfg Config
	now func() time.Time

	records map[model.Symbol]model.PriceRecord
	order   []model.Symbol // first-insertion order

	dataPoints int64
	rejected   int64
	lastUpdate time.Time
}

// New creates an empty store.
func New(cfg Config) *Store {
	if cfg.Policy == "" {
		cfg.Policy = PolicyLastWrite
	}
	if cfg.StreamGrace == 0 {
		cfg.StreamGrace = DefaultStreamGrace
	}
	return &Store{
		cfg:     cfg,
		now:     time.Now,
		records: make(map[model.Symbol]model.PriceRecord),
	}
}

// WithClock replaces the time source used for freshness and grace checks.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Upsert replaces the stored record for symbol unconditionally.
// Every call counts as one received data point.
func (s *Store) Upsert(sym model.Symbol, rec model.PriceRecord) {
	if _, ok := s.records[sym]; !ok {
		s.order = append(s.order, sym)
	}
	s.records[sym] = rec
	s.dataPoints++
	s.lastUpdate = s.now()
}

// Apply upserts rec if the configured policy accepts it over the current
// record. It reports whether the record was stored.
func (s *Store) Apply(sym model.Symbol, rec model.PriceRecord) bool {
	if cur, ok := s.records[sym]; ok {
		if !s.cfg.Policy.accept(cur, rec, s.cfg.StreamGrace, s.now()) {
			s.rejected++
			return false
		}
	}
	s.Upsert(sym, rec)
	return true
}

// Get returns the record for symbol.
func (s *Store) Get(sym model.Symbol) (model.PriceRecord, bool) {
	rec, ok := s.records[sym]
	return rec, ok
}

// All returns every record in first-insertion order.
func (s *Store) All() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, Entry{Symbol: sym, Record: s.records[sym]})
	}
	return out
}

// Len returns the number of tracked symbols.
func (s *Store) Len() int {
	return len(s.records)
}

// DataPoints returns the number of successful upserts.
func (s *Store) DataPoints() int64 {
	return s.dataPoints
}

// LastUpdate returns the time of the most recent upsert.
func (s *Store) LastUpdate() time.Time {
	return s.lastUpdate
}

// Policy returns the active reconciliation policy.
func (s *Store) Policy() Policy {
	return s.cfg.Policy
}

// Stats returns store counters.
func (s *Store) Stats() Stats {
	return Stats{
		Symbols:    len(s.records),
		DataPoints: s.dataPoints,
		Rejected:   s.rejected,
		LastUpdate: s.lastUpdate,
	}
}
