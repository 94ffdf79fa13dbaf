package signals

import (
	"reflect"
	"testing"

	"FundingArbBot/internal/operations/history"
)

const intervalMs = int64(8 * 60 * 60 * 1000)

func dataWithRates(symbol string, rates []float64) *history.HistoricalData {
	d := &history.HistoricalData{
		FundingRates: make(map[string][]history.RatePoint),
		SpotPrices:   make(map[string][]history.PricePoint),
		PerpPrices:   make(map[string][]history.PricePoint),
		Symbols:      []string{symbol},
	}
	for i, r := range rates {
		d.FundingRates[symbol] = append(d.FundingRates[symbol], history.RatePoint{
			Time: int64(i) * intervalMs,
			Rate: r,
		})
	}
	return d
}

func declining(n int) []float64 {
	rates := make([]float64, n)
	for i := range rates {
		rates[i] = 0.001 - float64(i)*0.00005
	}
	return rates
}

func rising(n int) []float64 {
	rates := make([]float64, n)
	for i := range rates {
		rates[i] = 0.0001 + float64(i)*0.00005
	}
	return rates
}

func TestStatisticalProvider_DecliningTrend(t *testing.T) {
	p := NewStatisticalProvider(dataWithRates("BTCUSDT", declining(20)), 0.6)
	ts := int64(19) * intervalMs

	s := p.Signals("BTCUSDT", ts, 30)
	if s.Momentum.Trend != TrendDeclining {
		t.Fatalf("expected declining trend, got %s", s.Momentum.Trend)
	}
	if s.Momentum.Strength <= 0.5 {
		t.Fatalf("monotone decline should be strong, got %v", s.Momentum.Strength)
	}
	if s.Momentum.AvgDecline <= 0 {
		t.Fatalf("expected positive average decline, got %v", s.Momentum.AvgDecline)
	}

	pred, ok := p.Predict("BTCUSDT", ts)
	if !ok {
		t.Fatal("full window should produce a prediction")
	}
	if !pred.WillDecline {
		t.Fatal("declining series must predict decline")
	}
}

func TestStatisticalProvider_RisingTrend(t *testing.T) {
	p := NewStatisticalProvider(dataWithRates("BTCUSDT", rising(20)), 0.6)
	ts := int64(19) * intervalMs

	s := p.Signals("BTCUSDT", ts, 30)
	if s.Momentum.Trend != TrendRising {
		t.Fatalf("expected rising trend, got %s", s.Momentum.Trend)
	}
	if s.EntryRecommendation != EntryEnter {
		t.Fatalf("healthy rising funding should recommend entry, got %s", s.EntryRecommendation)
	}
	if s.ExitRecommendation != ExitHold {
		t.Fatalf("expected hold, got %s", s.ExitRecommendation)
	}
}

func TestStatisticalProvider_NegativeAPRRecommendsExit(t *testing.T) {
	p := NewStatisticalProvider(dataWithRates("BTCUSDT", rising(20)), 0.6)

	s := p.Signals("BTCUSDT", int64(19)*intervalMs, -5)
	if s.ExitRecommendation != ExitNow {
		t.Fatalf("negative APR must recommend exit_now, got %s", s.ExitRecommendation)
	}
	if s.EntryRecommendation != EntrySkip {
		t.Fatalf("negative APR must recommend skip, got %s", s.EntryRecommendation)
	}
}

func TestStatisticalProvider_Deterministic(t *testing.T) {
	p := NewStatisticalProvider(dataWithRates("BTCUSDT", declining(30)), 0.6)
	ts := int64(25) * intervalMs

	first := p.Signals("BTCUSDT", ts, 12)
	second := p.Signals("BTCUSDT", ts, 12)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated calls with identical inputs must match")
	}
}

func TestStatisticalProvider_NoLookAhead(t *testing.T) {
	// rates crash after the query timestamp; signals at ts must not see it
	rates := append(rising(12), -0.01, -0.01, -0.01)
	p := NewStatisticalProvider(dataWithRates("BTCUSDT", rates), 0.6)
	ts := int64(11) * intervalMs

	s := p.Signals("BTCUSDT", ts, 30)
	if s.Momentum.Trend != TrendRising {
		t.Fatalf("future observations leaked into the window: trend %s", s.Momentum.Trend)
	}
}

func TestStatisticalProvider_ShortHistory(t *testing.T) {
	p := NewStatisticalProvider(dataWithRates("BTCUSDT", []float64{0.0005}), 0.6)

	s := p.Signals("BTCUSDT", 0, 30)
	if s.Momentum.Trend != TrendFlat {
		t.Fatalf("single observation should read flat, got %s", s.Momentum.Trend)
	}

	if _, ok := p.Predict("BTCUSDT", 0); ok {
		t.Fatal("prediction requires a full window")
	}
}

func TestStatisticalProvider_UnknownSymbol(t *testing.T) {
	p := NewStatisticalProvider(dataWithRates("BTCUSDT", rising(20)), 0.6)

	s := p.Signals("DOGEUSDT", intervalMs, 10)
	if s.Momentum.Trend != TrendFlat {
		t.Fatalf("unknown symbol should read flat, got %s", s.Momentum.Trend)
	}
	if _, ok := p.Predict("DOGEUSDT", intervalMs); ok {
		t.Fatal("unknown symbol must not predict")
	}
}
