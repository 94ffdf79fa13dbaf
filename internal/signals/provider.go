package signals

import (
	"math"
	"sort"

	"FundingArbBot/internal/operations/history"
)

const (
	momentumWindow   = 12 // 4 days of settlements
	volatilityWindow = 36 // 12 days of settlements
)

// StatisticalProvider derives momentum, volatility and risk from the same
// immutable historical dataset the engine replays over. Every answer is a
// pure function of (symbol, timestamp), so replays stay deterministic.
type StatisticalProvider struct {
	data          *history.HistoricalData
	riskThreshold float64
}

func NewStatisticalProvider(data *history.HistoricalData, riskThreshold float64) *StatisticalProvider {
	if riskThreshold <= 0 {
		riskThreshold = 0.6
	}
	return &StatisticalProvider{
		data:          data,
		riskThreshold: riskThreshold,
	}
}

func (p *StatisticalProvider) Signals(symbol string, timestamp int64, currentAPR float64) Signals {
	window := p.window(symbol, timestamp, momentumWindow)
	long := p.window(symbol, timestamp, volatilityWindow)

	momentum := analyzeMomentum(window)
	volatility := analyzeVolatility(window, long)
	risk := riskScore(momentum, volatility, window)

	s := Signals{
		Momentum:   momentum,
		Volatility: volatility,
		RiskScore:  risk,
	}

	s.EntryRecommendation = EntrySkip
	if currentAPR > 0 && risk <= p.riskThreshold && momentum.Trend != TrendDeclining {
		s.EntryRecommendation = EntryEnter
	}

	switch {
	case currentAPR < 0 || risk >= 0.85:
		s.ExitRecommendation = ExitNow
	case momentum.Trend == TrendDeclining && momentum.Strength >= 0.5:
		s.ExitRecommendation = ExitSoon
	default:
		s.ExitRecommendation = ExitHold
	}

	return s
}

// Predict backs the optional ML hook with the same momentum statistics.
// No prediction is reported until a full window of history exists.
func (p *StatisticalProvider) Predict(symbol string, timestamp int64) (Prediction, bool) {
	window := p.window(symbol, timestamp, momentumWindow)
	if len(window) < momentumWindow {
		return Prediction{}, false
	}

	momentum := analyzeMomentum(window)
	return Prediction{
		WillDecline: momentum.Trend == TrendDeclining,
		Confidence:  momentum.Strength,
	}, true
}

// window returns up to n rates observed at or before the timestamp
func (p *StatisticalProvider) window(symbol string, timestamp int64, n int) []float64 {
	series := p.data.FundingRates[symbol]
	if len(series) == 0 {
		return nil
	}

	// first index strictly after timestamp
	end := sort.Search(len(series), func(i int) bool {
		return series[i].Time > timestamp
	})
	start := end - n
	if start < 0 {
		start = 0
	}

	rates := make([]float64, 0, end-start)
	for _, pt := range series[start:end] {
		rates = append(rates, pt.Rate)
	}
	return rates
}

func analyzeMomentum(rates []float64) FundingMomentum {
	if len(rates) < 2 {
		return FundingMomentum{Trend: TrendFlat}
	}

	declines := 0
	declineSum := 0.0
	for i := 1; i < len(rates); i++ {
		diff := rates[i] - rates[i-1]
		if diff < 0 {
			declines++
			declineSum += -diff
		}
	}

	steps := len(rates) - 1
	declineRatio := float64(declines) / float64(steps)

	m := FundingMomentum{}
	switch {
	case declineRatio >= 0.6:
		m.Trend = TrendDeclining
	case declineRatio <= 0.4:
		m.Trend = TrendRising
	default:
		m.Trend = TrendFlat
	}
	m.Strength = math.Abs(declineRatio-0.5) * 2
	if declines > 0 {
		m.AvgDecline = declineSum / float64(declines)
	}
	return m
}

func analyzeVolatility(window, long []float64) Volatility {
	v := Volatility{
		CurrentVol: stddev(window),
		AvgVol:     stddev(long),
	}
	if v.AvgVol > 0 {
		v.VolPercentile = math.Min(v.CurrentVol/(2*v.AvgVol), 1.0)
	}
	v.IsLowVol = v.CurrentVol <= v.AvgVol
	return v
}

// riskScore blends decline pressure, relative volatility and the share of
// negative settlements into a single [0,1] figure
func riskScore(m FundingMomentum, v Volatility, rates []float64) float64 {
	declineComponent := 0.0
	if m.Trend == TrendDeclining {
		declineComponent = m.Strength
	}

	negatives := 0
	for _, r := range rates {
		if r < 0 {
			negatives++
		}
	}
	negativeComponent := 0.0
	if len(rates) > 0 {
		negativeComponent = float64(negatives) / float64(len(rates))
	}

	score := declineComponent*0.4 + v.VolPercentile*0.3 + negativeComponent*0.3
	return math.Max(0, math.Min(score, 1))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
