package movers

import (
	"testing"

	"github.com/rickgao/cryptoview/internal/model"
	"github.com/rickgao/cryptoview/internal/store"
)

func entries(changes ...any) []store.Entry {
	var out []store.Entry
	for i := 0; i < len(changes); i += 2 {
		out = append(out, store.Entry{
			Symbol: model.Symbol(changes[i].(string)),
			Record: model.PriceRecord{PriceChangePercent24h: changes[i+1].(float64)},
		})
	}
	return out
}

func symbols(ms []model.MoverEntry) []model.Symbol {
	out := make([]model.Symbol, len(ms))
	for i, m := range ms {
		out[i] = m.Symbol
	}
	return out
}

func TestRank_ByAbsoluteChange(t *testing.T) {
	got := Rank(entries("A", 12.0, "B", -15.0, "C", 3.0), DefaultLimit)

	want := []model.Symbol{"B", "A", "C"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, sym := range symbols(got) {
		if sym != want[i] {
			t.Errorf("rank[%d] = %s, want %s", i, sym, want[i])
		}
	}
	if got[0].ChangePercent24h != -15 {
		t.Errorf("B change = %v, want -15 (sign preserved)", got[0].ChangePercent24h)
	}
}

func TestRank_StableTies(t *testing.T) {
	got := symbols(Rank(entries("X", 5.0, "Y", -5.0, "Z", 5.0, "W", 9.0), DefaultLimit))

	want := []model.Symbol{"W", "X", "Y", "Z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank = %v, want %v", got, want)
		}
	}
}

func TestRank_Limit(t *testing.T) {
	in := entries("A", 1.0, "B", 2.0, "C", 3.0, "D", 4.0, "E", 5.0, "F", 6.0, "G", 7.0)

	if got := Rank(in, DefaultLimit); len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
	if got := Rank(in, 0); len(got) != 5 {
		t.Errorf("len with zero limit = %d, want default 5", len(got))
	}
	if got := Rank(in, 2); len(got) != 2 || got[0].Symbol != "G" {
		t.Errorf("Rank(limit 2) = %v, want [G F]", symbols(got))
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, DefaultLimit); len(got) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", got)
	}
}
