package history

import (
	"errors"
	"sort"
	"time"

	"FundingArbBot/internal/models"
	"FundingArbBot/internal/repositories"
	"FundingArbBot/pkg/logger"

	"go.uber.org/zap"
)

// ErrNoData means the requested window holds no usable history at all.
// The engine treats this as fatal and refuses to start.
var ErrNoData = errors.New("no historical data available for requested window")

// RatePoint is one settled funding observation
type RatePoint struct {
	Time int64   `json:"time"`
	Rate float64 `json:"rate"`
}

// PricePoint is one candle; Close is what snapshot resolution uses
type PricePoint struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// HistoricalData is the immutable in-memory dataset a run replays over.
// All series are sorted ascending by time and must not be mutated once loaded.
type HistoricalData struct {
	StartTime int64    `json:"startTime"`
	EndTime   int64    `json:"endTime"`
	Symbols   []string `json:"symbols"`

	FundingRates map[string][]RatePoint  `json:"fundingRates"`
	SpotPrices   map[string][]PricePoint `json:"spotPrices"`
	PerpPrices   map[string][]PricePoint `json:"perpPrices"`
}

type Provider struct {
	fundingRepo *repositories.FundingRateRepository
	priceRepo   *repositories.PriceRepository
	symbols     []string
}

func NewProvider(fundingRepo *repositories.FundingRateRepository, priceRepo *repositories.PriceRepository, symbols []string) *Provider {
	return &Provider{
		fundingRepo: fundingRepo,
		priceRepo:   priceRepo,
		symbols:     symbols,
	}
}

// Load pulls the cached window into memory. Symbols with no funding history
// are dropped; an entirely empty window returns ErrNoData.
func (p *Provider) Load(startTime, endTime time.Time) (*HistoricalData, error) {
	data := &HistoricalData{
		StartTime:    startTime.UnixMilli(),
		EndTime:      endTime.UnixMilli(),
		FundingRates: make(map[string][]RatePoint),
		SpotPrices:   make(map[string][]PricePoint),
		PerpPrices:   make(map[string][]PricePoint),
	}

	for _, symbol := range p.symbols {
		rates, err := p.fundingRepo.GetHistory(symbol, startTime, endTime)
		if err != nil {
			return nil, err
		}
		if len(rates) == 0 {
			logger.Warn("No funding history for symbol, dropping from run",
				zap.String("symbol", symbol))
			continue
		}

		spot, err := p.priceRepo.GetHistory(symbol, models.PriceMarketSpot, startTime, endTime)
		if err != nil {
			return nil, err
		}
		perp, err := p.priceRepo.GetHistory(symbol, models.PriceMarketPerp, startTime, endTime)
		if err != nil {
			return nil, err
		}

		data.FundingRates[symbol] = toRatePoints(rates)
		data.SpotPrices[symbol] = toPricePoints(spot)
		data.PerpPrices[symbol] = toPricePoints(perp)
		data.Symbols = append(data.Symbols, symbol)
	}

	if len(data.Symbols) == 0 {
		return nil, ErrNoData
	}

	sort.Strings(data.Symbols)
	logger.Info("Loaded historical window",
		zap.Int("symbols", len(data.Symbols)),
		zap.Time("start", startTime),
		zap.Time("end", endTime))
	return data, nil
}

func toRatePoints(rates []models.FundingRate) []RatePoint {
	points := make([]RatePoint, 0, len(rates))
	for _, r := range rates {
		points = append(points, RatePoint{
			Time: r.FundingTime.UnixMilli(),
			Rate: r.Rate,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points
}

func toPricePoints(prices []models.Price) []PricePoint {
	points := make([]PricePoint, 0, len(prices))
	for _, p := range prices {
		points = append(points, PricePoint{
			Time:  p.OpenTime.UnixMilli(),
			Open:  p.Open,
			High:  p.High,
			Low:   p.Low,
			Close: p.Close,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points
}
