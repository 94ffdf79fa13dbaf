package backtest

import (
	"strings"
	"testing"

	"FundingArbBot/internal/signals"
)

func TestBaselineExitPolicy(t *testing.T) {
	p := BaselineExitPolicy{}

	if exit, _ := p.ShouldExit(nil, 12.5, nil); exit {
		t.Fatal("positive APR must hold")
	}
	exit, reason := p.ShouldExit(nil, -3.2, nil)
	if !exit {
		t.Fatal("negative APR must exit")
	}
	if !strings.Contains(reason, "-3.20% APR") {
		t.Fatalf("reason should carry the APR, got %q", reason)
	}
}

func TestSignalExitPolicy(t *testing.T) {
	p := SignalExitPolicy{}

	sig := &signals.Signals{
		Momentum:           signals.FundingMomentum{Trend: signals.TrendDeclining},
		RiskScore:          0.8,
		ExitRecommendation: signals.ExitNow,
	}
	exit, reason := p.ShouldExit(nil, 10, sig)
	if !exit {
		t.Fatal("exit_now must exit regardless of APR")
	}
	if !strings.Contains(reason, "0.80") || !strings.Contains(reason, "declining") {
		t.Fatalf("reason should carry risk and trend, got %q", reason)
	}

	soon := &signals.Signals{ExitRecommendation: signals.ExitSoon}
	if exit, _ := p.ShouldExit(nil, 5, soon); exit {
		t.Fatal("exit_soon with healthy APR must hold")
	}
	if exit, _ := p.ShouldExit(nil, 1.5, soon); !exit {
		t.Fatal("exit_soon with APR under 2% must exit")
	}

	hold := &signals.Signals{ExitRecommendation: signals.ExitHold}
	if exit, _ := p.ShouldExit(nil, -0.5, hold); exit {
		t.Fatal("mildly negative APR alone must not exit the gated policy")
	}
	exit, reason = p.ShouldExit(nil, -1.5, hold)
	if !exit || reason != "Negative funding" {
		t.Fatalf("APR under -1%% must exit with the negative-funding reason, got %v %q", exit, reason)
	}
}

func TestBaselineSizing(t *testing.T) {
	p := BaselineSizingPolicy{}

	// equal weight when slots bind
	if got := p.Size(10000, nil, 5); got != 2000 {
		t.Fatalf("expected 2000, got %v", got)
	}
	// 20% cap when few slots remain
	if got := p.Size(10000, nil, 1); got != 2000 {
		t.Fatalf("cap must hold with one slot, got %v", got)
	}
	if got := p.Size(10000, nil, 0); got != 0 {
		t.Fatalf("no slots means no size, got %v", got)
	}
}

func TestSignalSizingMonotonicity(t *testing.T) {
	p := SignalSizingPolicy{}
	cash := 10000.0

	cand := func(conf, risk float64) *Candidate {
		return &Candidate{
			Confidence: conf,
			Signals:    &signals.Signals{RiskScore: risk},
		}
	}

	low := p.Size(cash, cand(0.3, 0.3), 5)
	high := p.Size(cash, cand(0.9, 0.3), 5)
	if high <= low {
		t.Fatalf("size must grow with confidence: %v vs %v", low, high)
	}

	risky := p.Size(cash, cand(0.9, 0.9), 5)
	if risky >= high {
		t.Fatalf("size must shrink with risk: %v vs %v", risky, high)
	}

	// never above the slot-capped base
	max := p.Size(cash, cand(1.0, 0), 5)
	if max > 2000 {
		t.Fatalf("size must not exceed the equal-weight cap, got %v", max)
	}
}

func TestRankByAPR(t *testing.T) {
	cands := []*Candidate{
		{Symbol: "B", APR: 10},
		{Symbol: "A", APR: 30},
		{Symbol: "C", APR: 20},
	}
	rankByAPR(cands)

	want := []string{"A", "C", "B"}
	for i, symbol := range want {
		if cands[i].Symbol != symbol {
			t.Fatalf("position %d: got %s, want %s", i, cands[i].Symbol, symbol)
		}
	}
}

func TestRankByConfidence_APRTieBreak(t *testing.T) {
	cands := []*Candidate{
		{Symbol: "A", APR: 10, Confidence: 0.80},
		{Symbol: "B", APR: 30, Confidence: 0.75}, // within 0.1 of A: APR decides
		{Symbol: "C", APR: 50, Confidence: 0.40}, // clearly less confident
	}
	rankByConfidence(cands)

	want := []string{"B", "A", "C"}
	for i, symbol := range want {
		if cands[i].Symbol != symbol {
			t.Fatalf("position %d: got %s, want %s", i, cands[i].Symbol, symbol)
		}
	}
}

func TestSelectEntries_SlotLimit(t *testing.T) {
	cands := []*Candidate{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}}

	if got := selectEntries(cands, 3, 5); len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got := selectEntries(cands, 5, 5); got != nil {
		t.Fatalf("full book must admit nothing, got %d", len(got))
	}
	if got := selectEntries(cands, 0, 5); len(got) != 3 {
		t.Fatalf("expected all 3 entries, got %d", len(got))
	}
}

func TestConfidenceScore(t *testing.T) {
	withPrediction := &Candidate{
		Prediction: &signals.Prediction{WillDecline: false, Confidence: 0.7},
		Signals:    &signals.Signals{RiskScore: 0.9},
	}
	if got := confidenceScore(withPrediction); got != 0.7 {
		t.Fatalf("prediction confidence should win, got %v", got)
	}

	declining := &Candidate{
		Prediction: &signals.Prediction{WillDecline: true, Confidence: 0.9},
	}
	if got := confidenceScore(declining); got != decliningConfidence {
		t.Fatalf("declining prediction must pin confidence low, got %v", got)
	}

	signalsOnly := &Candidate{Signals: &signals.Signals{RiskScore: 0.25}}
	if got := confidenceScore(signalsOnly); got != 0.75 {
		t.Fatalf("expected 1-risk, got %v", got)
	}
}
