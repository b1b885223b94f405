package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is one recorded price point for a tracked product. Rows are
// append-only; history queries order by observed_at ascending.
type Observation struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	ProductURL string          `gorm:"type:text;not null;index:idx_observations_url_time,priority:1"`
	Price      decimal.Decimal `gorm:"type:numeric;not null"`
	ObservedAt time.Time       `gorm:"type:timestamptz;not null;index:idx_observations_url_time,priority:2"`
}

func (Observation) TableName() string {
	return "price_observations"
}
