package models

import (
	"time"
)

type Price struct {
	ID       uint      `gorm:"primaryKey"`
	Symbol   string    `gorm:"index:idx_prices_lookup;not null"`
	Market   string    `gorm:"index:idx_prices_lookup;not null"`
	OpenTime time.Time `gorm:"index:idx_prices_lookup;not null"`
	Open     float64   `gorm:"type:decimal(20,8)"`
	High     float64   `gorm:"type:decimal(20,8)"`
	Low      float64   `gorm:"type:decimal(20,8)"`
	Close    float64   `gorm:"type:decimal(20,8)"`
	Volume   float64   `gorm:"type:decimal(20,8)"`
}

const (
	PriceMarketSpot = "spot"
	PriceMarketPerp = "perp"
)

// TableName sets the table name for Price model
func (Price) TableName() string {
	return "prices"
}
