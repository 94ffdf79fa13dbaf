package signals

// Funding momentum trend classifications
const (
	TrendRising    = "rising"
	TrendFlat      = "flat"
	TrendDeclining = "declining"
)

// Entry and exit recommendations
const (
	EntryEnter = "enter"
	EntrySkip  = "skip"

	ExitHold = "hold"
	ExitSoon = "exit_soon"
	ExitNow  = "exit_now"
)

// FundingMomentum describes the recent direction of a symbol's funding rate
type FundingMomentum struct {
	Trend      string  `json:"trend"`
	Strength   float64 `json:"strength"`
	AvgDecline float64 `json:"avgDecline"`
}

// Volatility describes how unsettled the funding rate has been
type Volatility struct {
	CurrentVol    float64 `json:"currentVol"`
	AvgVol        float64 `json:"avgVol"`
	VolPercentile float64 `json:"volPercentile"`
	IsLowVol      bool    `json:"isLowVol"`
}

// Signals is the full read-only bundle the engine consumes per symbol per tick
type Signals struct {
	Momentum            FundingMomentum `json:"fundingMomentum"`
	Volatility          Volatility      `json:"volatility"`
	RiskScore           float64         `json:"riskScore"`
	EntryRecommendation string          `json:"entryRecommendation"`
	ExitRecommendation  string          `json:"exitRecommendation"`
}

// Prediction is the optional ML-style forecast companion
type Prediction struct {
	WillDecline bool    `json:"willDecline"`
	Confidence  float64 `json:"confidence"`
}

// Provider yields signals for a symbol at a timestamp. Implementations must
// be pure: identical inputs return identical values, and the engine may call
// twice per tick per symbol (pre-exit and pre-entry).
type Provider interface {
	Signals(symbol string, timestamp int64, currentAPR float64) Signals
}

// Predictor is the optional forecast hook. The second return reports whether
// a prediction exists for the symbol/timestamp at all.
type Predictor interface {
	Predict(symbol string, timestamp int64) (Prediction, bool)
}
