package models

import (
	"math"
	"testing"
)

func TestQuoteDerive(t *testing.T) {
	q := Quote{Symbol: "AAPL", Price: 105, PreviousClose: 100}
	q.Derive()
	if q.Change != 5 {
		t.Errorf("Change = %v; want 5", q.Change)
	}
	if q.ChangePercent == nil {
		t.Fatal("ChangePercent = nil; want 5%")
	}
	if math.Abs(*q.ChangePercent-5.0) > 1e-9 {
		t.Errorf("ChangePercent = %v; want 5", *q.ChangePercent)
	}
}

func TestQuoteDerive_Invariant(t *testing.T) {
	cases := []struct{ price, prev float64 }{
		{105.25, 101.5},
		{3.14, 2.71},
		{99999.5, 100000},
	}
	for _, c := range cases {
		q := Quote{Symbol: "X", Price: c.price, PreviousClose: c.prev}
		q.Derive()
		wantChange := c.price - c.prev
		wantPct := wantChange / c.prev * 100
		if math.Abs(q.Change-wantChange) > 1e-9 {
			t.Errorf("Change = %v; want %v", q.Change, wantChange)
		}
		if q.ChangePercent == nil || math.Abs(*q.ChangePercent-wantPct) > 1e-9 {
			t.Errorf("ChangePercent = %v; want %v", q.ChangePercent, wantPct)
		}
	}
}

func TestQuoteDerive_ZeroPreviousClose(t *testing.T) {
	q := Quote{Symbol: "NEW", Price: 10, PreviousClose: 0}
	q.Derive()
	if q.ChangePercent != nil {
		t.Errorf("ChangePercent = %v; want nil for zero previous close", *q.ChangePercent)
	}
	if q.Change != 10 {
		t.Errorf("Change = %v; want 10", q.Change)
	}
}

func TestTierForSource(t *testing.T) {
	cases := []struct {
		source string
		want   SourceTier
	}{
		{"Reuters", Tier1},
		{"bloomberg", Tier1},
		{"CNBC", Tier2},
		{"Some Blog", Tier3},
		{"", Tier3},
	}
	for _, c := range cases {
		if got := TierForSource(c.source); got != c.want {
			t.Errorf("TierForSource(%q) = %q; want %q", c.source, got, c.want)
		}
	}
}

func TestTierWeights(t *testing.T) {
	if Tier1.Weight() != 3 || Tier2.Weight() != 2 || Tier3.Weight() != 1 {
		t.Errorf("tier weights = %d/%d/%d; want 3/2/1", Tier1.Weight(), Tier2.Weight(), Tier3.Weight())
	}
	if SourceTier("unknown").Weight() != 1 {
		t.Errorf("unknown tier weight = %d; want 1", SourceTier("unknown").Weight())
	}
}
