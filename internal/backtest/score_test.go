package backtest

import "testing"

func TestScore_PerfectRun(t *testing.T) {
	s := Summary{
		TotalReturnPct: 50,
		MaxDrawdownPct: 0,
		TotalTrades:    10,
	}
	// return 0.4, sharpe proxy 50/1 capped at 0.3, drawdown 0.2, trades 0.1
	approxEqual(t, "perfect score", Score(s), 1.0)
}

func TestScore_Components(t *testing.T) {
	s := Summary{
		TotalReturnPct: 25,  // 0.4 * 0.5
		MaxDrawdownPct: 10,  // 0.2 * 0.5; sharpe proxy 2.5/3
		TotalTrades:    5,   // 0.1 * 0.5
	}
	want := 0.4*0.5 + 0.3*(2.5/3) + 0.2*0.5 + 0.1*0.5
	approxEqual(t, "mixed score", Score(s), want)
}

func TestScore_LossyRunScoresLow(t *testing.T) {
	losing := Summary{TotalReturnPct: -20, MaxDrawdownPct: 40, TotalTrades: 2}
	winning := Summary{TotalReturnPct: 20, MaxDrawdownPct: 5, TotalTrades: 8}

	if Score(losing) >= Score(winning) {
		t.Fatalf("losing run must score below winning run: %v vs %v",
			Score(losing), Score(winning))
	}
	// deep drawdown zeroes its component rather than going negative
	if Score(losing) > 0.1 {
		t.Fatalf("losing run scored too high: %v", Score(losing))
	}
}
