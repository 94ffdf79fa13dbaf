package backtest

import (
	"FundingArbBot/internal/operations/history"
)

// Snapshot is the fully-typed market view at one settlement tick. Every map
// holds only symbols whose series resolved at or before the tick.
type Snapshot struct {
	Timestamp    int64
	FundingRates map[string]float64
	SpotPrices   map[string]float64
	PerpPrices   map[string]float64
}

// HasPrices reports whether both legs are priceable for a symbol
func (s *Snapshot) HasPrices(symbol string) bool {
	_, spot := s.SpotPrices[symbol]
	_, perp := s.PerpPrices[symbol]
	return spot && perp
}

// SnapshotResolver answers step-function lookups (latest observation at or
// before the query time) over the historical series. Queries must arrive with
// non-decreasing timestamps; each series keeps a cursor so a full run is a
// single pass, not a rescan per tick.
type SnapshotResolver struct {
	data *history.HistoricalData

	rateCursor map[string]int
	spotCursor map[string]int
	perpCursor map[string]int
}

func NewSnapshotResolver(data *history.HistoricalData) *SnapshotResolver {
	return &SnapshotResolver{
		data:       data,
		rateCursor: make(map[string]int),
		spotCursor: make(map[string]int),
		perpCursor: make(map[string]int),
	}
}

// Resolve builds the snapshot for a tick. The second return is false when the
// tick is unusable: no symbol resolves a funding rate, or no symbol resolves
// both prices. Such ticks are skipped by the caller.
func (r *SnapshotResolver) Resolve(timestamp int64) (*Snapshot, bool) {
	snap := &Snapshot{
		Timestamp:    timestamp,
		FundingRates: make(map[string]float64),
		SpotPrices:   make(map[string]float64),
		PerpPrices:   make(map[string]float64),
	}

	for _, symbol := range r.data.Symbols {
		if rate, ok := r.resolveRate(symbol, timestamp); ok {
			snap.FundingRates[symbol] = rate
		}
		if price, ok := r.resolvePrice(r.data.SpotPrices[symbol], r.spotCursor, symbol, timestamp); ok {
			snap.SpotPrices[symbol] = price
		}
		if price, ok := r.resolvePrice(r.data.PerpPrices[symbol], r.perpCursor, symbol, timestamp); ok {
			snap.PerpPrices[symbol] = price
		}
	}

	if len(snap.FundingRates) == 0 {
		return nil, false
	}
	priceable := false
	for symbol := range snap.SpotPrices {
		if _, ok := snap.PerpPrices[symbol]; ok {
			priceable = true
			break
		}
	}
	if !priceable {
		return nil, false
	}
	return snap, true
}

func (r *SnapshotResolver) resolveRate(symbol string, timestamp int64) (float64, bool) {
	series := r.data.FundingRates[symbol]
	idx := advance(len(series), r.rateCursor, symbol, timestamp, func(i int) int64 {
		return series[i].Time
	})
	if idx < 0 {
		return 0, false
	}
	return series[idx].Rate, true
}

func (r *SnapshotResolver) resolvePrice(series []history.PricePoint, cursor map[string]int, symbol string, timestamp int64) (float64, bool) {
	idx := advance(len(series), cursor, symbol, timestamp, func(i int) int64 {
		return series[i].Time
	})
	if idx < 0 {
		return 0, false
	}
	return series[idx].Close, true
}

// advance moves a symbol's cursor to the last index whose time is <= the
// query timestamp; -1 means no observation exists yet
func advance(length int, cursor map[string]int, symbol string, timestamp int64, timeAt func(int) int64) int {
	idx, ok := cursor[symbol]
	if !ok {
		idx = -1
	}
	for idx+1 < length && timeAt(idx+1) <= timestamp {
		idx++
	}
	cursor[symbol] = idx
	return idx
}
