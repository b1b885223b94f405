package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AlertStatusQuiet   = "quiet"
	AlertStatusAlerted = "alerted"
)

// AlertState is the per-product notification suppression state. It survives
// restarts so a crash between cycles cannot produce a duplicate alert.
type AlertState struct {
	ProductURL   string         `gorm:"primaryKey;type:text"`
	Status       string         `gorm:"type:text;not null"`
	LastDecision datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt    time.Time      `gorm:"type:timestamptz;not null"`
}

func (AlertState) TableName() string {
	return "alert_states"
}
