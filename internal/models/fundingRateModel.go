package models

import (
	"time"
)

type FundingRate struct {
	ID          uint      `gorm:"primaryKey"`
	Symbol      string    `gorm:"index:idx_funding_lookup;not null"`
	Rate        float64   `gorm:"type:decimal(20,10);not null"`
	MarkPrice   float64   `gorm:"type:decimal(20,8)"`
	FundingTime time.Time `gorm:"index:idx_funding_lookup;not null"`
}

// TableName sets the table name for FundingRate model
func (FundingRate) TableName() string {
	return "funding_rates"
}
