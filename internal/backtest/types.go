package backtest

import (
	"time"

	"FundingArbBot/internal/signals"
)

// Funding settles 3 times per day on Binance perpetuals
const (
	FundingPeriodsPerDay = 3
	FeeRate              = 0.001 // taker fee per spot leg
)

// Simulation config
type Config struct {
	InitialCapital float64 `json:"initialCapital"`
	MinAPR         float64 `json:"minAPR"` // percent, entry threshold
	RiskThreshold  float64 `json:"riskThreshold"`
	MaxPositions   int     `json:"maxPositions"`

	VolatilityFilter bool `json:"volatilityFilter"`
	MomentumFilter   bool `json:"momentumFilter"`

	// Time range
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// NewConfig creates default config
func NewConfig() Config {
	return Config{
		InitialCapital: 10000,
		MinAPR:         8,
		RiskThreshold:  0.6,
		MaxPositions:   5,
	}
}

// FundingPayment is one settlement credited to an open position
type FundingPayment struct {
	Time   int64   `json:"time"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// OpenPosition is a live delta-neutral pair: long spot, short perp.
// At most one exists per symbol at any time.
type OpenPosition struct {
	Symbol         string  `json:"symbol"`
	EntryTime      int64   `json:"entryTime"`
	EntrySpotPrice float64 `json:"entrySpotPrice"`
	EntryPerpPrice float64 `json:"entryPerpPrice"`
	Quantity       float64 `json:"quantity"` // base-asset units, fixed at entry

	Payments         []FundingPayment `json:"payments"`
	EntryFundingRate float64          `json:"entryFundingRate"`
	EntryAPR         float64          `json:"entryAPR"`

	ConcurrentPositions int `json:"concurrentPositions"` // open count at entry, inclusive
	PeriodsHeld         int `json:"periodsHeld"`

	EntrySignals *signals.Signals `json:"entrySignals,omitempty"`
}

// ClosedPosition is the immutable exit record with full P&L attribution.
// TotalPnL always equals SpotPnL + PerpPnL + TotalFunding - EntryFees - ExitFees.
type ClosedPosition struct {
	Symbol         string  `json:"symbol"`
	EntryTime      int64   `json:"entryTime"`
	ExitTime       int64   `json:"exitTime"`
	EntrySpotPrice float64 `json:"entrySpotPrice"`
	EntryPerpPrice float64 `json:"entryPerpPrice"`
	ExitSpotPrice  float64 `json:"exitSpotPrice"`
	ExitPerpPrice  float64 `json:"exitPerpPrice"`
	Quantity       float64 `json:"quantity"`

	EntryFundingRate float64 `json:"entryFundingRate"`
	EntryAPR         float64 `json:"entryAPR"`
	ExitFundingRate  float64 `json:"exitFundingRate"`
	ExitAPR          float64 `json:"exitAPR"`

	ExitReason          string  `json:"exitReason"`
	HoldingPeriodHours  float64 `json:"holdingPeriodHours"`
	PeriodsHeld         int     `json:"periodsHeld"`
	ConcurrentPositions int     `json:"concurrentPositions"`

	SpotPnL      float64 `json:"spotPnL"`
	PerpPnL      float64 `json:"perpPnL"`
	TotalFunding float64 `json:"totalFunding"`
	EntryFees    float64 `json:"entryFees"`
	ExitFees     float64 `json:"exitFees"`
	TotalPnL     float64 `json:"totalPnL"`

	EntrySignals *signals.Signals `json:"entrySignals,omitempty"`
}

// EquityPoint is one mark-to-market observation of the portfolio
type EquityPoint struct {
	Timestamp      int64   `json:"timestamp"`
	PortfolioValue float64 `json:"portfolioValue"`
}

// Summary condenses a completed run
type Summary struct {
	InitialCapital     float64 `json:"initialCapital"`
	FinalCapital       float64 `json:"finalCapital"`
	TotalReturnPct     float64 `json:"totalReturnPct"`
	TotalReturnDollars float64 `json:"totalReturnDollars"`
	TotalTrades        int     `json:"totalTrades"`
	WinningTrades      int     `json:"winningTrades"`
	WinRatePct         float64 `json:"winRatePct"`
	MaxDrawdownPct     float64 `json:"maxDrawdownPct"`
	TotalDays          float64 `json:"totalDays"`
}

// Result is the full, JSON-serializable output bundle of one run
type Result struct {
	Summary         Summary          `json:"summary"`
	EquityCurve     []EquityPoint    `json:"equityCurve"`
	ClosedPositions []ClosedPosition `json:"closedPositions"`
	MonthlyStats    []MonthlyStat    `json:"monthlyStats"`
	SymbolStats     []SymbolStat     `json:"symbolStats"`
}

// annualizedAPR converts a per-period funding rate into a percent APR
func annualizedAPR(rate float64) float64 {
	return rate * FundingPeriodsPerDay * 365 * 100
}
