package backtest

import "sort"

// EquityTracker marks the portfolio to market once per resolved tick and
// keeps the running peak and maximum drawdown. Max drawdown never decreases.
type EquityTracker struct {
	peak        float64
	maxDrawdown float64 // percent
	curve       []EquityPoint
}

func NewEquityTracker(initialCapital float64) *EquityTracker {
	return &EquityTracker{
		peak:  initialCapital,
		curve: make([]EquityPoint, 0),
	}
}

// Record values the portfolio at a tick and appends an equity point.
// Open positions are valued at the current spot price, falling back to the
// entry price when the tick could not resolve one for that symbol.
func (t *EquityTracker) Record(timestamp int64, cash float64, positions map[string]*OpenPosition, snap *Snapshot) float64 {
	// Fixed summation order keeps replays bit-identical
	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	value := cash
	for _, symbol := range symbols {
		pos := positions[symbol]
		price := pos.EntrySpotPrice
		if current, ok := snap.SpotPrices[pos.Symbol]; ok {
			price = current
		}
		value += pos.Quantity * price
	}

	if value > t.peak {
		t.peak = value
	}
	if t.peak > 0 {
		drawdown := (t.peak - value) / t.peak * 100
		if drawdown > t.maxDrawdown {
			t.maxDrawdown = drawdown
		}
	}

	t.curve = append(t.curve, EquityPoint{
		Timestamp:      timestamp,
		PortfolioValue: value,
	})
	return value
}

// MaxDrawdownPct returns the worst peak-to-trough decline seen so far
func (t *EquityTracker) MaxDrawdownPct() float64 {
	return t.maxDrawdown
}

// Curve returns the recorded equity points in tick order
func (t *EquityTracker) Curve() []EquityPoint {
	return t.curve
}
