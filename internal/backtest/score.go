package backtest

import "math"

// Score maps a run summary onto a single comparable figure for parameter
// sweeps. Return, a drawdown-based Sharpe proxy, drawdown itself and trade
// count each contribute a capped share. The score never feeds back into a run.
func Score(s Summary) float64 {
	sharpeProxy := s.TotalReturnPct / math.Max(1, s.MaxDrawdownPct)

	score := 0.4 * math.Min(1, s.TotalReturnPct/50)
	score += 0.3 * math.Min(1, sharpeProxy/3)
	score += 0.2 * math.Max(0, 1-s.MaxDrawdownPct/20)
	score += 0.1 * math.Min(1, float64(s.TotalTrades)/10)
	return score
}
