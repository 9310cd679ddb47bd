package stream

import (
	"testing"
	"time"
)

func TestConstantBackoff(t *testing.T) {
	b := ConstantBackoff{}
	for attempt := 0; attempt < 5; attempt++ {
		if got := b.Next(attempt); got != DefaultReconnectDelay {
			t.Errorf("Next(%d) = %v, want %v", attempt, got, DefaultReconnectDelay)
		}
	}

	b = ConstantBackoff{Delay: 250 * time.Millisecond}
	if got := b.Next(100); got != 250*time.Millisecond {
		t.Errorf("Next(100) = %v, want 250ms", got)
	}
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff{Base: time.Second, Max: 10 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{1000, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := b.Next(tt.attempt); got != tt.want {
			t.Errorf("Next(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}

	t.Run("jitter stays in range", func(t *testing.T) {
		b := ExponentialBackoff{Base: time.Second, Max: 10 * time.Second, Jitter: true}
		for i := 0; i < 100; i++ {
			got := b.Next(2)
			if got < 2*time.Second || got > 6*time.Second {
				t.Fatalf("Next(2) = %v, want within [2s, 6s]", got)
			}
		}
	})

	t.Run("uncapped does not overflow", func(t *testing.T) {
		b := ExponentialBackoff{Base: time.Second}
		if got := b.Next(200); got <= 0 {
			t.Errorf("Next(200) = %v, want positive", got)
		}
	})
}
