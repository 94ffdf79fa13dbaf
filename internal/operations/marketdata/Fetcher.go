package marketdata

import (
	"context"
	"log"
	"strconv"
	"time"

	"FundingArbBot/internal/models"
	"FundingArbBot/internal/operations/binance"
)

// Kline interval used for both legs; one candle per funding settlement period
const KlineInterval = "8h"

type Fetcher struct {
	client  *binance.BinanceClient
	symbols []string
}

func NewFetcher(client *binance.BinanceClient, symbols []string) *Fetcher {
	return &Fetcher{
		client:  client,
		symbols: symbols,
	}
}

// FetchFundingRates downloads settled funding rates for a symbol over a window.
// Mark price is filled from the matching perp candle by the caller.
func (f *Fetcher) FetchFundingRates(ctx context.Context, symbol string, startTime, endTime time.Time) ([]models.FundingRate, error) {
	var all []models.FundingRate

	// 1000 records per request, 3 settlements per day
	chunk := 333 * 24 * time.Hour
	currentStart := startTime

	for currentStart.Before(endTime) {
		currentEnd := currentStart.Add(chunk)
		if currentEnd.After(endTime) {
			currentEnd = endTime
		}

		rates, err := f.client.GetFundingRateHistory(ctx, symbol,
			currentStart.UnixMilli(), currentEnd.UnixMilli())
		if err != nil {
			return nil, err
		}

		for _, r := range rates {
			all = append(all, models.FundingRate{
				Symbol:      symbol,
				Rate:        parseFloat(r.FundingRate),
				FundingTime: time.UnixMilli(r.FundingTime).UTC(),
			})
		}

		log.Printf("Fetched %d funding rates for %s from %s to %s",
			len(rates),
			symbol,
			currentStart.Format("2006-01-02 15:04:05"),
			currentEnd.Format("2006-01-02 15:04:05"))

		currentStart = currentEnd

		// Small delay between chunks to avoid overwhelming the API
		time.Sleep(100 * time.Millisecond)
	}

	return all, nil
}

// FetchPrices downloads candles for a symbol and market over a window
func (f *Fetcher) FetchPrices(ctx context.Context, symbol, market string, startTime, endTime time.Time) ([]models.Price, error) {
	var all []models.Price

	// 1000 candles of 8h per request
	chunk := 1000 * 8 * time.Hour
	currentStart := startTime

	for currentStart.Before(endTime) {
		currentEnd := currentStart.Add(chunk)
		if currentEnd.After(endTime) {
			currentEnd = endTime
		}

		prices, err := f.fetchChunk(ctx, symbol, market, currentStart, currentEnd)
		if err != nil {
			return nil, err
		}
		all = append(all, prices...)

		log.Printf("Fetched %d %s candles for %s from %s to %s",
			len(prices),
			market,
			symbol,
			currentStart.Format("2006-01-02 15:04:05"),
			currentEnd.Format("2006-01-02 15:04:05"))

		currentStart = currentEnd
		time.Sleep(100 * time.Millisecond)
	}

	return all, nil
}

func (f *Fetcher) fetchChunk(ctx context.Context, symbol, market string, start, end time.Time) ([]models.Price, error) {
	var prices []models.Price

	if market == models.PriceMarketPerp {
		klines, err := f.client.GetPerpKlines(ctx, symbol, KlineInterval,
			start.UnixMilli(), end.UnixMilli())
		if err != nil {
			return nil, err
		}
		for _, k := range klines {
			prices = append(prices, models.Price{
				Symbol:   symbol,
				Market:   market,
				OpenTime: time.UnixMilli(k.OpenTime).UTC(),
				Open:     parseFloat(k.Open),
				High:     parseFloat(k.High),
				Low:      parseFloat(k.Low),
				Close:    parseFloat(k.Close),
				Volume:   parseFloat(k.Volume),
			})
		}
		return prices, nil
	}

	klines, err := f.client.GetSpotKlines(ctx, symbol, KlineInterval,
		start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	for _, k := range klines {
		prices = append(prices, models.Price{
			Symbol:   symbol,
			Market:   market,
			OpenTime: time.UnixMilli(k.OpenTime).UTC(),
			Open:     parseFloat(k.Open),
			High:     parseFloat(k.High),
			Low:      parseFloat(k.Low),
			Close:    parseFloat(k.Close),
			Volume:   parseFloat(k.Volume),
		})
	}
	return prices, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Error parsing float: %v", err)
		return 0
	}
	return f
}
