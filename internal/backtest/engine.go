package backtest

import (
	"sort"

	"FundingArbBot/internal/operations/history"
	"FundingArbBot/internal/signals"
	"FundingArbBot/pkg/logger"

	"go.uber.org/zap"
)

// Engine replays a delta-neutral funding-harvest strategy over historical
// data: long spot, short perp, collect funding every settlement. One Engine
// is one run; it holds no state across runs.
//
// Per resolved tick the order is fixed: settle funding, evaluate exits
// against the snapshot, apply exits, evaluate and apply entries, mark to
// market. Exit evaluation and funding settlement both use the tick's own
// rate, and entries charge the spot notional only.
type Engine struct {
	config   Config
	data     *history.HistoricalData
	resolver *SnapshotResolver

	entryPolicy  EntryPolicy
	exitPolicy   ExitPolicy
	sizingPolicy SizingPolicy

	provider  signals.Provider
	predictor signals.Predictor

	cash      float64
	positions map[string]*OpenPosition
	closed    []ClosedPosition
	equity    *EquityTracker
}

type exitDecision struct {
	symbol string
	reason string
}

// NewEngine creates a baseline engine: enter on APR alone, exit when
// funding turns negative
func NewEngine(config Config, data *history.HistoricalData) *Engine {
	e := newEngine(config, data)
	e.entryPolicy = BaselineEntryPolicy{}
	e.exitPolicy = BaselineExitPolicy{}
	e.sizingPolicy = BaselineSizingPolicy{}
	return e
}

// NewSignalEngine creates an engine gated by a predictive signal provider.
// predictor may be nil; provider must not be.
func NewSignalEngine(config Config, data *history.HistoricalData, provider signals.Provider, predictor signals.Predictor) *Engine {
	e := newEngine(config, data)
	e.provider = provider
	e.predictor = predictor
	e.entryPolicy = SignalEntryPolicy{
		RiskThreshold:    config.RiskThreshold,
		VolatilityFilter: config.VolatilityFilter,
		MomentumFilter:   config.MomentumFilter,
	}
	e.exitPolicy = SignalExitPolicy{}
	e.sizingPolicy = SignalSizingPolicy{}
	return e
}

func newEngine(config Config, data *history.HistoricalData) *Engine {
	return &Engine{
		config:    config,
		data:      data,
		resolver:  NewSnapshotResolver(data),
		cash:      config.InitialCapital,
		positions: make(map[string]*OpenPosition),
		closed:    make([]ClosedPosition, 0),
		equity:    NewEquityTracker(config.InitialCapital),
	}
}

// Run executes the full replay and returns the result bundle
func (e *Engine) Run() (*Result, error) {
	if e.data == nil || len(e.data.Symbols) == 0 {
		return nil, history.ErrNoData
	}

	ticks := FundingTimestamps(e.config.StartTime.UnixMilli(), e.config.EndTime.UnixMilli())
	logger.Info("Starting backtest",
		zap.Int("ticks", len(ticks)),
		zap.Int("symbols", len(e.data.Symbols)),
		zap.Float64("initialCapital", e.config.InitialCapital))

	var lastSnap *Snapshot
	for _, tick := range ticks {
		snap, ok := e.resolver.Resolve(tick)
		if !ok {
			// Data gap: no settlement, no entries, no equity point
			logger.Debug("Skipping unresolvable tick", zap.Int64("tick", tick))
			continue
		}
		lastSnap = snap

		e.settleFunding(snap)

		for _, d := range e.evaluateExits(snap) {
			e.closePosition(e.positions[d.symbol], snap, snap.Timestamp, d.reason)
		}

		e.applyEntries(snap)

		e.equity.Record(tick, e.cash, e.positions, snap)
	}

	// Anything still open closes against the last resolvable snapshot
	if lastSnap != nil {
		for _, symbol := range e.openSymbols() {
			e.closePosition(e.positions[symbol], lastSnap, lastSnap.Timestamp, "Backtest ended")
		}
	}

	result := e.buildResult()
	logger.Info("Backtest finished",
		zap.Int("trades", result.Summary.TotalTrades),
		zap.Float64("finalCapital", result.Summary.FinalCapital),
		zap.Float64("maxDrawdownPct", result.Summary.MaxDrawdownPct))
	return result, nil
}

// settleFunding credits each open position with the tick's settlement:
// quantity x perp price x funding rate. Positions whose rate did not resolve
// at this tick settle nothing.
func (e *Engine) settleFunding(snap *Snapshot) {
	for _, symbol := range e.openSymbols() {
		pos := e.positions[symbol]
		rate, ok := snap.FundingRates[symbol]
		if !ok {
			continue
		}
		perp := pos.EntryPerpPrice
		if p, ok := snap.PerpPrices[symbol]; ok {
			perp = p
		}

		payment := pos.Quantity * perp * rate
		pos.Payments = append(pos.Payments, FundingPayment{
			Time:   snap.Timestamp,
			Rate:   rate,
			Amount: payment,
		})
		pos.PeriodsHeld++
		e.cash += payment
	}
}

// evaluateExits judges every open position against the same snapshot before
// any exit is applied
func (e *Engine) evaluateExits(snap *Snapshot) []exitDecision {
	var decisions []exitDecision
	for _, symbol := range e.openSymbols() {
		pos := e.positions[symbol]
		rate, ok := snap.FundingRates[symbol]
		if !ok {
			continue
		}
		apr := annualizedAPR(rate)

		var sig *signals.Signals
		if e.provider != nil {
			s := e.provider.Signals(symbol, snap.Timestamp, apr)
			sig = &s
		}

		if exit, reason := e.exitPolicy.ShouldExit(pos, apr, sig); exit {
			decisions = append(decisions, exitDecision{symbol: symbol, reason: reason})
		}
	}
	return decisions
}

// closePosition converts an open position into its immutable closed record.
// Unresolvable exit prices fall back to the entry values. Fees are attributed
// in the P&L decomposition but are not charged against cash.
func (e *Engine) closePosition(pos *OpenPosition, snap *Snapshot, timestamp int64, reason string) {
	exitSpot := pos.EntrySpotPrice
	if p, ok := snap.SpotPrices[pos.Symbol]; ok {
		exitSpot = p
	}
	exitPerp := pos.EntryPerpPrice
	if p, ok := snap.PerpPrices[pos.Symbol]; ok {
		exitPerp = p
	}
	exitRate := pos.EntryFundingRate
	if r, ok := snap.FundingRates[pos.Symbol]; ok {
		exitRate = r
	}

	spotPnL := (exitSpot - pos.EntrySpotPrice) * pos.Quantity
	perpPnL := (pos.EntryPerpPrice - exitPerp) * pos.Quantity // short-perp convention
	totalFunding := 0.0
	for _, p := range pos.Payments {
		totalFunding += p.Amount
	}
	entryFees := pos.Quantity * pos.EntrySpotPrice * FeeRate
	exitFees := pos.Quantity * exitSpot * FeeRate
	totalPnL := spotPnL + perpPnL + totalFunding - entryFees - exitFees

	e.cash += pos.Quantity * exitSpot

	e.closed = append(e.closed, ClosedPosition{
		Symbol:              pos.Symbol,
		EntryTime:           pos.EntryTime,
		ExitTime:            timestamp,
		EntrySpotPrice:      pos.EntrySpotPrice,
		EntryPerpPrice:      pos.EntryPerpPrice,
		ExitSpotPrice:       exitSpot,
		ExitPerpPrice:       exitPerp,
		Quantity:            pos.Quantity,
		EntryFundingRate:    pos.EntryFundingRate,
		EntryAPR:            pos.EntryAPR,
		ExitFundingRate:     exitRate,
		ExitAPR:             annualizedAPR(exitRate),
		ExitReason:          reason,
		HoldingPeriodHours:  float64(timestamp-pos.EntryTime) / (60 * 60 * 1000),
		PeriodsHeld:         pos.PeriodsHeld,
		ConcurrentPositions: pos.ConcurrentPositions,
		SpotPnL:             spotPnL,
		PerpPnL:             perpPnL,
		TotalFunding:        totalFunding,
		EntryFees:           entryFees,
		ExitFees:            exitFees,
		TotalPnL:            totalPnL,
		EntrySignals:        pos.EntrySignals,
	})
	delete(e.positions, pos.Symbol)

	logger.Debug("Closed position",
		zap.String("symbol", pos.Symbol),
		zap.String("reason", reason),
		zap.Float64("totalPnL", totalPnL))
}

// applyEntries collects, filters, ranks, sizes and opens new positions for
// the tick, never exceeding the concurrency cap or re-entering an open symbol
func (e *Engine) applyEntries(snap *Snapshot) {
	candidates := e.collectCandidates(snap)
	if len(candidates) == 0 {
		return
	}

	admitted := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if e.entryPolicy.ShouldEnter(c) {
			admitted = append(admitted, c)
		}
	}

	if e.provider != nil {
		rankByConfidence(admitted)
	} else {
		rankByAPR(admitted)
	}

	for _, c := range selectEntries(admitted, len(e.positions), e.config.MaxPositions) {
		slots := e.config.MaxPositions - len(e.positions)
		size := e.sizingPolicy.Size(e.cash, c, slots)
		if size <= 0 || size > e.cash {
			continue
		}

		quantity := size / c.SpotPrice
		e.cash -= quantity * c.SpotPrice

		e.positions[c.Symbol] = &OpenPosition{
			Symbol:              c.Symbol,
			EntryTime:           snap.Timestamp,
			EntrySpotPrice:      c.SpotPrice,
			EntryPerpPrice:      c.PerpPrice,
			Quantity:            quantity,
			Payments:            make([]FundingPayment, 0),
			EntryFundingRate:    c.FundingRate,
			EntryAPR:            c.APR,
			ConcurrentPositions: len(e.positions) + 1,
			EntrySignals:        c.Signals,
		}

		logger.Debug("Opened position",
			zap.String("symbol", c.Symbol),
			zap.Float64("apr", c.APR),
			zap.Float64("notional", quantity*c.SpotPrice))
	}
}

// collectCandidates gathers symbols above the APR threshold that are fully
// priceable and not already open, in symbol order
func (e *Engine) collectCandidates(snap *Snapshot) []*Candidate {
	symbols := make([]string, 0, len(snap.FundingRates))
	for symbol := range snap.FundingRates {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var candidates []*Candidate
	for _, symbol := range symbols {
		if _, open := e.positions[symbol]; open {
			continue
		}
		if !snap.HasPrices(symbol) {
			continue
		}

		rate := snap.FundingRates[symbol]
		apr := annualizedAPR(rate)
		if apr <= e.config.MinAPR {
			continue
		}

		c := &Candidate{
			Symbol:      symbol,
			FundingRate: rate,
			APR:         apr,
			SpotPrice:   snap.SpotPrices[symbol],
			PerpPrice:   snap.PerpPrices[symbol],
		}
		if e.provider != nil {
			s := e.provider.Signals(symbol, snap.Timestamp, apr)
			c.Signals = &s
		}
		if e.predictor != nil {
			if p, ok := e.predictor.Predict(symbol, snap.Timestamp); ok {
				c.Prediction = &p
			}
		}
		c.Confidence = confidenceScore(c)
		candidates = append(candidates, c)
	}
	return candidates
}

func (e *Engine) openSymbols() []string {
	symbols := make([]string, 0, len(e.positions))
	for symbol := range e.positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func (e *Engine) buildResult() *Result {
	summary := Summary{
		InitialCapital:     e.config.InitialCapital,
		FinalCapital:       e.cash,
		TotalReturnDollars: e.cash - e.config.InitialCapital,
		TotalTrades:        len(e.closed),
		MaxDrawdownPct:     e.equity.MaxDrawdownPct(),
		TotalDays:          e.config.EndTime.Sub(e.config.StartTime).Hours() / 24,
	}
	if e.config.InitialCapital > 0 {
		summary.TotalReturnPct = summary.TotalReturnDollars / e.config.InitialCapital * 100
	}
	for _, c := range e.closed {
		if c.TotalPnL > 0 {
			summary.WinningTrades++
		}
	}
	if summary.TotalTrades > 0 {
		summary.WinRatePct = float64(summary.WinningTrades) / float64(summary.TotalTrades) * 100
	}

	return &Result{
		Summary:         summary,
		EquityCurve:     e.equity.Curve(),
		ClosedPositions: e.closed,
		MonthlyStats:    MonthlyStats(e.closed),
		SymbolStats:     SymbolStats(e.closed),
	}
}
