package stream

import (
	"math"
	"math/rand/v2"
	"time"
)

// DefaultReconnectDelay is the fixed delay of the default backoff.
const DefaultReconnectDelay = 5 * time.Second

// Backoff decides how long to wait before reconnect attempt n (0-based,
// reset after every successful open).
type Backoff interface {
	Next(attempt int) time.Duration
}

// ConstantBackoff waits the same delay before every attempt.
type ConstantBackoff struct {
	Delay time.Duration // zero means DefaultReconnectDelay
}

func (b ConstantBackoff) Next(int) time.Duration {
	if b.Delay <= 0 {
		return DefaultReconnectDelay
	}
	return b.Delay
}

// ExponentialBackoff doubles the delay per attempt up to Max.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter bool // scale each delay by a random factor in [0.5, 1.5), still capped at Max
}

func (b ExponentialBackoff) Next(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	wait := base
	for i := 0; i < attempt && wait < math.MaxInt64/2; i++ {
		wait *= 2
		if b.Max > 0 && wait >= b.Max {
			wait = b.Max
			break
		}
	}
	if b.Max > 0 && wait > b.Max {
		wait = b.Max
	}

	if b.Jitter {
		wait = wait/2 + time.Duration(rand.Int64N(int64(wait)+1))
		if b.Max > 0 && wait > b.Max {
			wait = b.Max
		}
	}
	return wait
}
