package handlers

import (
	"context"
	"log"
	"time"

	"FundingArbBot/internal/models"
	"FundingArbBot/internal/operations/binance"
	"FundingArbBot/internal/operations/marketdata"
	"FundingArbBot/internal/repositories"
)

// DataHandler fills the local cache with everything one backtest window needs:
// funding-rate history plus spot and perp candles for every symbol.
type DataHandler struct {
	fundingRepo *repositories.FundingRateRepository
	priceRepo   *repositories.PriceRepository
	fetcher     *marketdata.Fetcher
	symbols     []string
}

func NewDataHandler(client *binance.BinanceClient, fundingRepo *repositories.FundingRateRepository, priceRepo *repositories.PriceRepository, symbols []string) *DataHandler {
	return &DataHandler{
		fundingRepo: fundingRepo,
		priceRepo:   priceRepo,
		fetcher:     marketdata.NewFetcher(client, symbols),
		symbols:     symbols,
	}
}

// Sync downloads and persists the window for all symbols. A symbol that fails
// is logged and skipped so the remaining symbols still get cached.
func (h *DataHandler) Sync(ctx context.Context, startTime, endTime time.Time) error {
	for _, symbol := range h.symbols {
		if err := h.syncSymbol(ctx, symbol, startTime, endTime); err != nil {
			log.Printf("Error syncing %s: %v", symbol, err)
			continue
		}
	}
	return nil
}

func (h *DataHandler) syncSymbol(ctx context.Context, symbol string, startTime, endTime time.Time) error {
	perp, err := h.fetcher.FetchPrices(ctx, symbol, models.PriceMarketPerp, startTime, endTime)
	if err != nil {
		return err
	}

	spot, err := h.fetcher.FetchPrices(ctx, symbol, models.PriceMarketSpot, startTime, endTime)
	if err != nil {
		return err
	}

	rates, err := h.fetcher.FetchFundingRates(ctx, symbol, startTime, endTime)
	if err != nil {
		return err
	}

	// Stamp each funding record with the perp close prevailing at settlement
	for i := range rates {
		rates[i].MarkPrice = lastCloseAtOrBefore(perp, rates[i].FundingTime)
	}

	// Re-sync replaces whatever the cache held for the window
	if err := h.priceRepo.DeleteWindow(symbol, models.PriceMarketPerp, startTime, endTime); err != nil {
		return err
	}
	if err := h.priceRepo.DeleteWindow(symbol, models.PriceMarketSpot, startTime, endTime); err != nil {
		return err
	}
	if err := h.fundingRepo.DeleteWindow(symbol, startTime, endTime); err != nil {
		return err
	}

	if err := h.priceRepo.CreateBatch(perp); err != nil {
		return err
	}
	if err := h.priceRepo.CreateBatch(spot); err != nil {
		return err
	}
	if err := h.fundingRepo.CreateBatch(rates); err != nil {
		return err
	}

	log.Printf("Synced %s: %d funding rates, %d perp candles, %d spot candles",
		symbol, len(rates), len(perp), len(spot))
	return nil
}

func lastCloseAtOrBefore(prices []models.Price, t time.Time) float64 {
	var close float64
	for _, p := range prices {
		if p.OpenTime.After(t) {
			break
		}
		close = p.Close
	}
	return close
}
