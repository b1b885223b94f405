package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pricewatcher/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertObservation(ctx context.Context, item *models.Observation) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ObservedAt.IsZero() {
		item.ObservedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListObservations(ctx context.Context, productURL string) ([]models.Observation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Observation
	if err := s.db.WithContext(ctx).
		Model(&models.Observation{}).
		Where("product_url = ?", productURL).
		Order("observed_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LatestObservation(ctx context.Context, productURL string) (*models.Observation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Observation
	err := s.db.WithContext(ctx).
		Where("product_url = ?", productURL).
		Order("observed_at desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetAlertState(ctx context.Context, productURL string) (*models.AlertState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.AlertState
	err := s.db.WithContext(ctx).
		Where("product_url = ?", productURL).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveAlertState(ctx context.Context, item *models.AlertState) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.ProductURL) == "" {
		return nil
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"last_decision",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListAlertStates(ctx context.Context) ([]models.AlertState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.AlertState
	if err := s.db.WithContext(ctx).
		Model(&models.AlertState{}).
		Order("product_url asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
