package backtest

import (
	"fmt"
	"math"

	"FundingArbBot/internal/signals"
)

// Confidence assigned when the predictor expects the rate to decline;
// such candidates sink to the bottom of the ranking.
const decliningConfidence = 0.1

// SignalExitPolicy reads the gate's exit recommendation and keeps a hard
// floor under strongly negative funding
type SignalExitPolicy struct{}

func (SignalExitPolicy) ShouldExit(_ *OpenPosition, apr float64, sig *signals.Signals) (bool, string) {
	if sig != nil {
		if sig.ExitRecommendation == signals.ExitNow {
			return true, fmt.Sprintf("Exit signal: risk %.2f, %s momentum",
				sig.RiskScore, sig.Momentum.Trend)
		}
		if sig.ExitRecommendation == signals.ExitSoon && apr < 2 {
			return true, fmt.Sprintf("Weakening funding: %.2f%% APR", apr)
		}
	}
	if apr < -1 {
		return true, "Negative funding"
	}
	return false, ""
}

// SignalEntryPolicy layers risk, volatility, momentum and prediction checks
// on top of the APR threshold
type SignalEntryPolicy struct {
	RiskThreshold    float64
	VolatilityFilter bool
	MomentumFilter   bool
}

func (p SignalEntryPolicy) ShouldEnter(c *Candidate) bool {
	if c.Signals == nil {
		return false
	}
	if c.Signals.RiskScore > p.RiskThreshold {
		return false
	}
	if p.VolatilityFilter && !c.Signals.Volatility.IsLowVol {
		return false
	}
	if p.MomentumFilter && c.Signals.Momentum.Trend == signals.TrendDeclining {
		return false
	}
	if c.Prediction != nil && c.Prediction.WillDecline && c.Prediction.Confidence > 0.6 {
		return false
	}
	return true
}

// SignalSizingPolicy scales the equal-weight base by confidence and risk:
// monotonically up with confidence, down with risk score, never above the
// slot-capped base.
type SignalSizingPolicy struct{}

func (SignalSizingPolicy) Size(cash float64, c *Candidate, availableSlots int) float64 {
	if availableSlots <= 0 {
		return 0
	}
	base := math.Min(cash*0.2, cash/float64(availableSlots))

	risk := 0.0
	if c.Signals != nil {
		risk = c.Signals.RiskScore
	}
	scale := c.Confidence * (1 - 0.5*risk)
	if scale < 0.1 {
		scale = 0.1
	}
	if scale > 1 {
		scale = 1
	}
	return base * scale
}

// confidenceScore ranks a candidate: predictor confidence when available
// (forced low for predicted decliners), else the inverse of the risk score
func confidenceScore(c *Candidate) float64 {
	if c.Prediction != nil {
		if c.Prediction.WillDecline {
			return decliningConfidence
		}
		return c.Prediction.Confidence
	}
	if c.Signals != nil {
		return 1 - c.Signals.RiskScore
	}
	return 0
}
