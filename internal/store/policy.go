package store

import (
	"fmt"
	"time"

	"github.com/rickgao/cryptoview/internal/model"
)

// Policy decides whether an incoming record may replace the stored one.
type Policy string

const (
	// PolicyLastWrite accepts every write. Whichever feed writes last wins
	// for all fields.
	PolicyLastWrite Policy = "last_write"

	// PolicyNewest rejects a record whose LastUpdate is older than the
	// stored record's LastUpdate.
	PolicyNewest Policy = "newest"

	// PolicyStreamPreferred rejects a poll record while the stored record
	// came from the stream and is younger than the stream grace period.
	// Stream records are always accepted.
	PolicyStreamPreferred Policy = "stream_preferred"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyLastWrite, PolicyNewest, PolicyStreamPreferred:
		return p, nil
	case "":
		return PolicyLastWrite, nil
	default:
		return "", fmt.Errorf("unknown reconcile policy %q", s)
	}
}

// accept reports whether next may replace cur. now is the reconciliation
// time used for the stream grace window.
func (p Policy) accept(cur, next model.PriceRecord, grace time.Duration, now time.Time) bool {
	switch p {
	case PolicyNewest:
		return !next.LastUpdate.Before(cur.LastUpdate)
	case PolicyStreamPreferred:
		if next.Source != model.SourcePoll || cur.Source != model.SourceStream {
			return true
		}
		return now.Sub(cur.LastUpdate) >= grace
	default:
		return true
	}
}
