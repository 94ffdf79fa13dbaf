package backtest

// FundingIntervalMs is the spacing of perpetual funding settlements.
// The grid is anchored to 00:00/08:00/16:00 UTC, which the unix epoch
// already aligns with.
const FundingIntervalMs int64 = 8 * 60 * 60 * 1000

// FundingTimestamps returns every settlement instant inside [startMs, endMs],
// ascending. A start after the end yields an empty run, not an error.
func FundingTimestamps(startMs, endMs int64) []int64 {
	if startMs > endMs {
		return nil
	}

	first := startMs
	if rem := first % FundingIntervalMs; rem != 0 {
		first += FundingIntervalMs - rem
	}

	var ticks []int64
	for t := first; t <= endMs; t += FundingIntervalMs {
		ticks = append(ticks, t)
	}
	return ticks
}
