// Package alert keeps a bounded, most-recent-first log of user-visible events.
package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/cryptoview/internal/model"
)

// DefaultCapacity is the number of alerts retained.
const DefaultCapacity = 10

// timeLayout renders alert times as HH:MM on a 24-hour clock.
const timeLayout = "15:04"

// Log is a fixed-capacity alert log. Insertion evicts the oldest entry when
// full; entries never expire otherwise. Not safe for concurrent use.
type Log struct {
	capacity int
	entries  []model.AlertEntry // most recent first
	now      func() time.Time
}

// NewLog creates a log holding up to capacity entries.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		entries:  make([]model.AlertEntry, 0, capacity+1),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

// Record prepends a new entry and returns it.
func (l *Log) Record(message string, kind model.AlertKind) model.AlertEntry {
	ts := l.now()
	entry := model.AlertEntry{
		ID:        uuid.New(),
		Message:   message,
		Kind:      kind,
		Time:      ts.Format(timeLayout),
		CreatedAt: ts,
	}

	l.entries = append(l.entries, model.AlertEntry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry

	if len(l.entries) > l.capacity {
		l.entries[len(l.entries)-1] = model.AlertEntry{}
		l.entries = l.entries[:l.capacity]
	}
	return entry
}

// All returns the entries, most recent first.
func (l *Log) All() []model.AlertEntry {
	out := make([]model.AlertEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return len(l.entries)
}
