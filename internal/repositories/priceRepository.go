package repositories

import (
	"FundingArbBot/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

type PriceRepository struct {
	db *gorm.DB
}

// NewPriceRepository creates a new instance of PriceRepository
func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// Create adds a new Price record to the database
func (r *PriceRepository) Create(price *models.Price) error {
	if price == nil {
		return errors.New("price cannot be nil")
	}
	return r.db.Create(price).Error
}

// CreateBatch inserts a batch of Price records in chunks
func (r *PriceRepository) CreateBatch(prices []models.Price) error {
	if len(prices) == 0 {
		return nil
	}
	return r.db.CreateInBatches(prices, 500).Error
}

// GetHistory gets candles for a symbol and market within a time range, ascending
func (r *PriceRepository) GetHistory(symbol, market string, start, end time.Time) ([]models.Price, error) {
	if symbol == "" || market == "" {
		return nil, errors.New("invalid symbol or market")
	}

	var prices []models.Price
	err := r.db.Where("symbol = ? AND market = ? AND open_time BETWEEN ? AND ?",
		symbol, market, start, end).
		Order("open_time ASC").
		Find(&prices).Error
	return prices, err
}

// GetLatestBefore gets the most recent candle at or before a point in time
func (r *PriceRepository) GetLatestBefore(symbol, market string, t time.Time) (*models.Price, error) {
	if symbol == "" || market == "" {
		return nil, errors.New("invalid symbol or market")
	}

	var price models.Price
	err := r.db.Where("symbol = ? AND market = ? AND open_time <= ?", symbol, market, t).
		Order("open_time DESC").
		First(&price).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &price, err
}

// DeleteWindow clears cached candles for a symbol and market in a time range
func (r *PriceRepository) DeleteWindow(symbol, market string, start, end time.Time) error {
	return r.db.Where("symbol = ? AND market = ? AND open_time BETWEEN ? AND ?",
		symbol, market, start, end).
		Delete(&models.Price{}).Error
}
