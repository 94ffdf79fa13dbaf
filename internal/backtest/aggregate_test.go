package backtest

import (
	"testing"
	"time"
)

func closedAt(symbol string, exit time.Time, pnl, funding, hours float64) ClosedPosition {
	return ClosedPosition{
		Symbol:             symbol,
		ExitTime:           exit.UnixMilli(),
		TotalPnL:           pnl,
		TotalFunding:       funding,
		HoldingPeriodHours: hours,
	}
}

func TestMonthlyStats(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)

	closed := []ClosedPosition{
		closedAt("BTCUSDT", jan, 100, 10, 24),
		closedAt("ETHUSDT", jan, -50, 5, 48),
		closedAt("BTCUSDT", feb, 30, 3, 16),
	}

	stats := MonthlyStats(closed)
	if len(stats) != 2 {
		t.Fatalf("expected 2 months, got %d", len(stats))
	}

	if stats[0].Month != "2024-01" || stats[1].Month != "2024-02" {
		t.Fatalf("months out of order: %s, %s", stats[0].Month, stats[1].Month)
	}

	jan24 := stats[0]
	if jan24.Trades != 2 {
		t.Fatalf("expected 2 January trades, got %d", jan24.Trades)
	}
	approxEqual(t, "jan totalPnL", jan24.TotalPnL, 50)
	approxEqual(t, "jan avgPnL", jan24.AvgPnL, 25)
	approxEqual(t, "jan winRate", jan24.WinRatePct, 50)
	approxEqual(t, "jan avgFunding", jan24.AvgFunding, 7.5)
	approxEqual(t, "jan avgHolding", jan24.AvgHoldingHours, 36)
}

func TestSymbolStats(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	closed := []ClosedPosition{
		closedAt("ETHUSDT", jan, -20, 2, 8),
		closedAt("BTCUSDT", jan, 60, 6, 24),
		closedAt("BTCUSDT", jan, 40, 4, 16),
	}

	stats := SymbolStats(closed)
	if len(stats) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(stats))
	}
	if stats[0].Symbol != "BTCUSDT" || stats[1].Symbol != "ETHUSDT" {
		t.Fatalf("symbols out of order: %s, %s", stats[0].Symbol, stats[1].Symbol)
	}

	btc := stats[0]
	if btc.Trades != 2 {
		t.Fatalf("expected 2 BTC trades, got %d", btc.Trades)
	}
	approxEqual(t, "btc totalPnL", btc.TotalPnL, 100)
	approxEqual(t, "btc winRate", btc.WinRatePct, 100)
	approxEqual(t, "eth winRate", stats[1].WinRatePct, 0)
}

func TestStats_EmptyInput(t *testing.T) {
	if got := MonthlyStats(nil); len(got) != 0 {
		t.Fatalf("expected no monthly stats, got %d", len(got))
	}
	if got := SymbolStats(nil); len(got) != 0 {
		t.Fatalf("expected no symbol stats, got %d", len(got))
	}
}
