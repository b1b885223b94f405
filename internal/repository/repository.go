package repository

import (
	"context"

	"pricewatcher/internal/models"
)

// Repository is the durable store for price observations and per-product
// alert suppression state.
type Repository interface {
	// InsertObservation appends one observation. Once it returns nil the row
	// is visible to all subsequent history/latest calls.
	InsertObservation(ctx context.Context, item *models.Observation) error
	// ListObservations returns the full history for a product, oldest first.
	ListObservations(ctx context.Context, productURL string) ([]models.Observation, error)
	// LatestObservation returns the most recent observation or nil.
	LatestObservation(ctx context.Context, productURL string) (*models.Observation, error)

	GetAlertState(ctx context.Context, productURL string) (*models.AlertState, error)
	SaveAlertState(ctx context.Context, item *models.AlertState) error
	ListAlertStates(ctx context.Context) ([]models.AlertState, error)
}
