package backtest

import (
	"sort"
	"time"
)

// MonthlyStat summarizes the trades that exited within one calendar month
type MonthlyStat struct {
	Month           string  `json:"month"` // "2024-01"
	Trades          int     `json:"trades"`
	TotalPnL        float64 `json:"totalPnL"`
	AvgPnL          float64 `json:"avgPnL"`
	WinRatePct      float64 `json:"winRatePct"`
	AvgFunding      float64 `json:"avgFunding"`
	AvgHoldingHours float64 `json:"avgHoldingHours"`
}

// SymbolStat summarizes all trades of one symbol
type SymbolStat struct {
	Symbol          string  `json:"symbol"`
	Trades          int     `json:"trades"`
	TotalPnL        float64 `json:"totalPnL"`
	AvgPnL          float64 `json:"avgPnL"`
	WinRatePct      float64 `json:"winRatePct"`
	AvgFunding      float64 `json:"avgFunding"`
	AvgHoldingHours float64 `json:"avgHoldingHours"`
}

type statAccumulator struct {
	trades       int
	wins         int
	totalPnL     float64
	totalFunding float64
	totalHours   float64
}

func (a *statAccumulator) add(c ClosedPosition) {
	a.trades++
	if c.TotalPnL > 0 {
		a.wins++
	}
	a.totalPnL += c.TotalPnL
	a.totalFunding += c.TotalFunding
	a.totalHours += c.HoldingPeriodHours
}

// MonthlyStats groups closed positions by exit month, sorted chronologically
func MonthlyStats(closed []ClosedPosition) []MonthlyStat {
	groups := make(map[string]*statAccumulator)
	for _, c := range closed {
		month := time.UnixMilli(c.ExitTime).UTC().Format("2006-01")
		if groups[month] == nil {
			groups[month] = &statAccumulator{}
		}
		groups[month].add(c)
	}

	stats := make([]MonthlyStat, 0, len(groups))
	for month, acc := range groups {
		n := float64(acc.trades)
		stats = append(stats, MonthlyStat{
			Month:           month,
			Trades:          acc.trades,
			TotalPnL:        acc.totalPnL,
			AvgPnL:          acc.totalPnL / n,
			WinRatePct:      float64(acc.wins) / n * 100,
			AvgFunding:      acc.totalFunding / n,
			AvgHoldingHours: acc.totalHours / n,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })
	return stats
}

// SymbolStats groups closed positions by symbol, sorted alphabetically
func SymbolStats(closed []ClosedPosition) []SymbolStat {
	groups := make(map[string]*statAccumulator)
	for _, c := range closed {
		if groups[c.Symbol] == nil {
			groups[c.Symbol] = &statAccumulator{}
		}
		groups[c.Symbol].add(c)
	}

	stats := make([]SymbolStat, 0, len(groups))
	for symbol, acc := range groups {
		n := float64(acc.trades)
		stats = append(stats, SymbolStat{
			Symbol:          symbol,
			Trades:          acc.trades,
			TotalPnL:        acc.totalPnL,
			AvgPnL:          acc.totalPnL / n,
			WinRatePct:      float64(acc.wins) / n * 100,
			AvgFunding:      acc.totalFunding / n,
			AvgHoldingHours: acc.totalHours / n,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Symbol < stats[j].Symbol })
	return stats
}
