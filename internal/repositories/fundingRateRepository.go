package repositories

import (
	"FundingArbBot/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

type FundingRateRepository struct {
	db *gorm.DB
}

// NewFundingRateRepository creates a new instance of FundingRateRepository
func NewFundingRateRepository(db *gorm.DB) *FundingRateRepository {
	return &FundingRateRepository{db: db}
}

// Create adds a new FundingRate record to the database
func (r *FundingRateRepository) Create(rate *models.FundingRate) error {
	if rate == nil {
		return errors.New("funding rate cannot be nil")
	}
	return r.db.Create(rate).Error
}

// CreateBatch inserts a batch of FundingRate records in chunks
func (r *FundingRateRepository) CreateBatch(rates []models.FundingRate) error {
	if len(rates) == 0 {
		return nil
	}
	return r.db.CreateInBatches(rates, 500).Error
}

// GetHistory gets funding rates for a symbol within a time range, ascending
func (r *FundingRateRepository) GetHistory(symbol string, start, end time.Time) ([]models.FundingRate, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}

	var rates []models.FundingRate
	err := r.db.Where("symbol = ? AND funding_time BETWEEN ? AND ?",
		symbol, start, end).
		Order("funding_time ASC").
		Find(&rates).Error
	return rates, err
}

// GetLatestBefore gets the most recent funding rate at or before a point in time
func (r *FundingRateRepository) GetLatestBefore(symbol string, t time.Time) (*models.FundingRate, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}

	var rate models.FundingRate
	err := r.db.Where("symbol = ? AND funding_time <= ?", symbol, t).
		Order("funding_time DESC").
		First(&rate).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &rate, err
}

// DeleteWindow clears cached funding rates for a symbol in a time range
func (r *FundingRateRepository) DeleteWindow(symbol string, start, end time.Time) error {
	return r.db.Where("symbol = ? AND funding_time BETWEEN ? AND ?",
		symbol, start, end).
		Delete(&models.FundingRate{}).Error
}
