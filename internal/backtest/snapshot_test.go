package backtest

import (
	"testing"

	"FundingArbBot/internal/operations/history"
)

func TestSnapshotResolver_StepFunction(t *testing.T) {
	d := testData(0, 3*FundingIntervalMs)
	addSymbol(d, "BTCUSDT",
		[]history.RatePoint{rp(0, 0.0001), rp(2*FundingIntervalMs, 0.0003)},
		[]history.PricePoint{pp(0, 100), pp(FundingIntervalMs, 101)},
		[]history.PricePoint{pp(0, 100.5), pp(FundingIntervalMs, 101.5)})

	r := NewSnapshotResolver(d)

	// tick 1: rate still the t=0 observation, prices advanced
	snap, ok := r.Resolve(FundingIntervalMs)
	if !ok {
		t.Fatal("tick 1 should resolve")
	}
	if got := snap.FundingRates["BTCUSDT"]; got != 0.0001 {
		t.Fatalf("expected last-known rate 0.0001, got %v", got)
	}
	if got := snap.SpotPrices["BTCUSDT"]; got != 101 {
		t.Fatalf("expected spot 101, got %v", got)
	}

	// tick 2: rate updates, prices stay at their last observation
	snap, ok = r.Resolve(2 * FundingIntervalMs)
	if !ok {
		t.Fatal("tick 2 should resolve")
	}
	if got := snap.FundingRates["BTCUSDT"]; got != 0.0003 {
		t.Fatalf("expected rate 0.0003, got %v", got)
	}
	if got := snap.PerpPrices["BTCUSDT"]; got != 101.5 {
		t.Fatalf("expected perp to hold at 101.5, got %v", got)
	}
}

func TestSnapshotResolver_AbsentBeforeFirstObservation(t *testing.T) {
	d := testData(0, 2*FundingIntervalMs)
	addSymbol(d, "BTCUSDT",
		[]history.RatePoint{rp(FundingIntervalMs, 0.0002)},
		[]history.PricePoint{pp(FundingIntervalMs, 100)},
		[]history.PricePoint{pp(FundingIntervalMs, 100.5)})

	r := NewSnapshotResolver(d)

	if _, ok := r.Resolve(0); ok {
		t.Fatal("tick before any observation must not resolve")
	}
	if _, ok := r.Resolve(FundingIntervalMs); !ok {
		t.Fatal("tick at first observation should resolve")
	}
}

func TestSnapshotResolver_RequiresBothLegs(t *testing.T) {
	d := testData(0, FundingIntervalMs)
	// funding and spot exist, perp never does
	addSymbol(d, "BTCUSDT",
		[]history.RatePoint{rp(0, 0.0002)},
		[]history.PricePoint{pp(0, 100)},
		nil)

	r := NewSnapshotResolver(d)
	if _, ok := r.Resolve(0); ok {
		t.Fatal("tick with no fully-priceable symbol must be skipped")
	}
}

func TestSnapshotResolver_PartialSymbolCoverage(t *testing.T) {
	d := testData(0, FundingIntervalMs)
	addSymbol(d, "BTCUSDT",
		[]history.RatePoint{rp(0, 0.0002)},
		[]history.PricePoint{pp(0, 100)},
		[]history.PricePoint{pp(0, 100.5)})
	// second symbol has no data until later; tick must still resolve
	addSymbol(d, "ETHUSDT",
		[]history.RatePoint{rp(FundingIntervalMs, 0.0004)},
		[]history.PricePoint{pp(FundingIntervalMs, 50)},
		[]history.PricePoint{pp(FundingIntervalMs, 50.2)})

	r := NewSnapshotResolver(d)
	snap, ok := r.Resolve(0)
	if !ok {
		t.Fatal("tick should resolve with one priceable symbol")
	}
	if _, present := snap.FundingRates["ETHUSDT"]; present {
		t.Fatal("symbol without prior observation must be absent from snapshot")
	}
	if snap.HasPrices("ETHUSDT") {
		t.Fatal("HasPrices must be false for the unresolved symbol")
	}
	if !snap.HasPrices("BTCUSDT") {
		t.Fatal("HasPrices must be true for the resolved symbol")
	}
}

func TestSnapshotResolver_MonotonicCursorReuse(t *testing.T) {
	d := testData(0, 10*FundingIntervalMs)
	var rates []history.RatePoint
	var prices []history.PricePoint
	for i := int64(0); i <= 10; i++ {
		rates = append(rates, rp(i*FundingIntervalMs, float64(i)*0.0001))
		prices = append(prices, pp(i*FundingIntervalMs, 100+float64(i)))
	}
	addSymbol(d, "BTCUSDT", rates, prices, prices)

	r := NewSnapshotResolver(d)
	for i := int64(0); i <= 10; i++ {
		snap, ok := r.Resolve(i * FundingIntervalMs)
		if !ok {
			t.Fatalf("tick %d should resolve", i)
		}
		if got, want := snap.FundingRates["BTCUSDT"], float64(i)*0.0001; got != want {
			t.Fatalf("tick %d: rate %v, want %v", i, got, want)
		}
		if got, want := snap.SpotPrices["BTCUSDT"], 100+float64(i); got != want {
			t.Fatalf("tick %d: spot %v, want %v", i, got, want)
		}
	}
}
