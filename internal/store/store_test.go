package store

import (
	"testing"
	"time"

	"github.com/rickgao/cryptoview/internal/model"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func rec(price float64, src model.Source, ts time.Time) model.PriceRecord {
	return model.PriceRecord{
		Price:      price,
		High24h:    price * 1.05,
		Low24h:     price * 0.95,
		LastUpdate: ts,
		Source:     src,
	}
}

func TestStore_UpsertThenGet(t *testing.T) {
	s := New(Config{})
	s.now = fixedClock(t0)

	first := rec(100, model.SourceStream, t0)
	second := model.PriceRecord{Price: 90, Source: model.SourcePoll, LastUpdate: t0}

	s.Upsert("BTC", first)
	s.Upsert("BTC", second)

	got, ok := s.Get("BTC")
	if !ok {
		t.Fatal("BTC not found")
	}
	if got != second {
		t.Errorf("Get = %+v, want whole-record replacement %+v", got, second)
	}
	if got.High24h != 0 {
		t.Errorf("High24h = %v, want 0 (no field-level merge)", got.High24h)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := New(Config{})
	if _, ok := s.Get("ETH"); ok {
		t.Error("expected ETH not found")
	}
}

func TestStore_CountersAndOrder(t *testing.T) {
	s := New(Config{})
	s.now = fixedClock(t0)

	s.Upsert("ETH", rec(3000, model.SourceStream, t0))
	s.Upsert("BTC", rec(50000, model.SourceStream, t0))
	s.Upsert("ETH", rec(3010, model.SourceStream, t0))

	if got := s.DataPoints(); got != 3 {
		t.Errorf("DataPoints = %d, want 3", got)
	}
	if got := s.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
	if !s.LastUpdate().Equal(t0) {
		t.Errorf("LastUpdate = %v, want %v", s.LastUpdate(), t0)
	}

	all := s.All()
	if len(all) != 2 || all[0].Symbol != "ETH" || all[1].Symbol != "BTC" {
		t.Fatalf("All order = %+v, want [ETH BTC]", all)
	}
	if all[0].Record.Price != 3010 {
		t.Errorf("ETH price = %v, want 3010", all[0].Record.Price)
	}
}

func TestStore_ApplyPolicies(t *testing.T) {
	streamOld := rec(100, model.SourceStream, t0)
	streamNew := rec(101, model.SourceStream, t0.Add(10*time.Second))
	pollOld := rec(99, model.SourcePoll, t0)
	pollNew := rec(102, model.SourcePoll, t0.Add(10*time.Second))

	tests := []struct {
		name      string
		policy    Policy
		now       time.Time
		first     model.PriceRecord
		second    model.PriceRecord
		wantPrice float64
		wantOK    bool
	}{
		{"last_write stale poll after stream", PolicyLastWrite, t0.Add(11 * time.Second), streamNew, pollOld, 99, true},
		{"last_write stream after poll", PolicyLastWrite, t0.Add(11 * time.Second), pollOld, streamNew, 101, true},
		{"newest rejects stale poll after stream", PolicyNewest, t0.Add(11 * time.Second), streamNew, pollOld, 101, false},
		{"newest accepts newer poll after stream", PolicyNewest, t0.Add(11 * time.Second), streamOld, pollNew, 102, true},
		{"newest accepts equal timestamps", PolicyNewest, t0, streamOld, pollOld, 99, true},
		{"stream_preferred rejects poll within grace", PolicyStreamPreferred, t0.Add(30 * time.Second), streamOld, pollNew, 100, false},
		{"stream_preferred accepts poll after grace", PolicyStreamPreferred, t0.Add(2 * time.Minute), streamOld, pollNew, 102, true},
		{"stream_preferred accepts stream after poll", PolicyStreamPreferred, t0.Add(time.Second), pollNew, streamOld, 100, true},
		{"stream_preferred accepts poll after poll", PolicyStreamPreferred, t0.Add(time.Second), pollOld, pollNew, 102, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{Policy: tt.policy, StreamGrace: time.Minute})
			s.now = fixedClock(tt.now)

			if !s.Apply("BTC", tt.first) {
				t.Fatal("first Apply rejected")
			}
			if got := s.Apply("BTC", tt.second); got != tt.wantOK {
				t.Errorf("second Apply = %v, want %v", got, tt.wantOK)
			}

			got, _ := s.Get("BTC")
			if got.Price != tt.wantPrice {
				t.Errorf("Price = %v, want %v", got.Price, tt.wantPrice)
			}

			wantPoints := int64(1)
			if tt.wantOK {
				wantPoints = 2
			}
			if s.DataPoints() != wantPoints {
				t.Errorf("DataPoints = %d, want %d", s.DataPoints(), wantPoints)
			}
			if !tt.wantOK && s.Stats().Rejected != 1 {
				t.Errorf("Rejected = %d, want 1", s.Stats().Rejected)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyLastWrite, false},
		{"last_write", PolicyLastWrite, false},
		{"newest", PolicyNewest, false},
		{"stream_preferred", PolicyStreamPreferred, false},
		{"poll_first", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
