package backtest

import (
	"math"
	"testing"

	"FundingArbBot/internal/operations/history"
)

// helpers shared by the backtest package tests

func rp(t int64, rate float64) history.RatePoint {
	return history.RatePoint{Time: t, Rate: rate}
}

func pp(t int64, close float64) history.PricePoint {
	return history.PricePoint{Time: t, Open: close, High: close, Low: close, Close: close}
}

func testData(start, end int64) *history.HistoricalData {
	return &history.HistoricalData{
		StartTime:    start,
		EndTime:      end,
		FundingRates: make(map[string][]history.RatePoint),
		SpotPrices:   make(map[string][]history.PricePoint),
		PerpPrices:   make(map[string][]history.PricePoint),
	}
}

func addSymbol(d *history.HistoricalData, symbol string, rates []history.RatePoint, spot, perp []history.PricePoint) {
	d.Symbols = append(d.Symbols, symbol)
	d.FundingRates[symbol] = rates
	d.SpotPrices[symbol] = spot
	d.PerpPrices[symbol] = perp
}

func approxEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: got %.12f, want %.12f", name, got, want)
	}
}
