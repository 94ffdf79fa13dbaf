package binance

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"golang.org/x/time/rate"
)

type BinanceClient struct {
	spot        *binance.Client
	futures     *futures.Client
	rateLimiter *rate.Limiter
	httpClient  *http.Client
}

func NewBinanceClient(apiKey, secretKey string) *BinanceClient {
	// Create custom HTTP client with timeouts
	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	spotClient := binance.NewClient(apiKey, secretKey)
	spotClient.HTTPClient = httpClient

	futuresClient := futures.NewClient(apiKey, secretKey)
	futuresClient.HTTPClient = httpClient

	// Create rate limiter: 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &BinanceClient{
		spot:        spotClient,
		futures:     futuresClient,
		rateLimiter: limiter,
		httpClient:  httpClient,
	}
}

// GetFundingRateHistory fetches settled funding rates for one request window
func (c *BinanceClient) GetFundingRateHistory(ctx context.Context, symbol string, startTime, endTime int64) ([]*futures.FundingRate, error) {
	var rates []*futures.FundingRate
	err := c.withRetry(ctx, func() error {
		var err error
		rates, err = c.futures.NewFundingRateService().
			Symbol(symbol).
			StartTime(startTime).
			EndTime(endTime).
			Limit(1000).
			Do(ctx)
		return err
	})
	return rates, err
}

// GetPerpKlines fetches perpetual-futures candles for one request window
func (c *BinanceClient) GetPerpKlines(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]*futures.Kline, error) {
	var klines []*futures.Kline
	err := c.withRetry(ctx, func() error {
		var err error
		klines, err = c.futures.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(startTime).
			EndTime(endTime).
			Limit(1000).
			Do(ctx)
		return err
	})
	return klines, err
}

// GetSpotKlines fetches spot candles for one request window
func (c *BinanceClient) GetSpotKlines(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]*binance.Kline, error) {
	var klines []*binance.Kline
	err := c.withRetry(ctx, func() error {
		var err error
		klines, err = c.spot.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(startTime).
			EndTime(endTime).
			Limit(1000).
			Do(ctx)
		return err
	})
	return klines, err
}

func (c *BinanceClient) withRetry(ctx context.Context, call func() error) error {
	maxRetries := 3
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		err := call()
		if err == nil {
			return nil
		}

		// If this was the last attempt, return the error
		if attempt == maxRetries {
			return err
		}

		// Calculate backoff duration with exponential increase
		waitTime := time.Duration(math.Pow(2, float64(attempt))) * backoff

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
	return nil
}
