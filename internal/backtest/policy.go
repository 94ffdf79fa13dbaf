package backtest

import (
	"fmt"
	"math"

	"FundingArbBot/internal/signals"
)

// Candidate is an enterable symbol at one tick, with everything the entry,
// ranking and sizing policies need to judge it.
type Candidate struct {
	Symbol      string
	FundingRate float64
	APR         float64 // percent
	SpotPrice   float64
	PerpPrice   float64

	Signals    *signals.Signals
	Prediction *signals.Prediction
	Confidence float64
}

// ExitPolicy decides whether an open position should close at the current
// tick. sig is nil when no signal gate is configured.
type ExitPolicy interface {
	ShouldExit(pos *OpenPosition, apr float64, sig *signals.Signals) (bool, string)
}

// EntryPolicy filters candidates that already cleared the APR threshold
type EntryPolicy interface {
	ShouldEnter(c *Candidate) bool
}

// SizingPolicy turns an admitted candidate into a dollar notional
type SizingPolicy interface {
	Size(cash float64, c *Candidate, availableSlots int) float64
}

// BaselineExitPolicy closes as soon as funding annualizes below zero
type BaselineExitPolicy struct{}

func (BaselineExitPolicy) ShouldExit(_ *OpenPosition, apr float64, _ *signals.Signals) (bool, string) {
	if apr < 0 {
		return true, fmt.Sprintf("Funding turned negative: %.2f%% APR", apr)
	}
	return false, ""
}

// BaselineEntryPolicy admits every candidate above the APR threshold
type BaselineEntryPolicy struct{}

func (BaselineEntryPolicy) ShouldEnter(*Candidate) bool {
	return true
}

// BaselineSizingPolicy splits cash equally over the available slots,
// capped at 20% of cash per position
type BaselineSizingPolicy struct{}

func (BaselineSizingPolicy) Size(cash float64, _ *Candidate, availableSlots int) float64 {
	if availableSlots <= 0 {
		return 0
	}
	return math.Min(cash*0.2, cash/float64(availableSlots))
}
