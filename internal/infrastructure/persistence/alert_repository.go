package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/notification"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/persistence/models"
)

// GormAlertRepository persists operator alerts
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// Save persists one alert
func (r *GormAlertRepository) Save(ctx context.Context, alert notification.Alert) error {
	var model models.AlertModel
	model.FromDomain(alert)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Recent returns the most recent alerts, newest first
func (r *GormAlertRepository) Recent(ctx context.Context, limit int) ([]notification.Alert, error) {
	if limit < 1 {
		limit = 50
	}
	var alertModels []models.AlertModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&alertModels).Error; err != nil {
		return nil, err
	}

	alerts := make([]notification.Alert, len(alertModels))
	for i, model := range alertModels {
		alerts[i] = model.ToDomain()
	}
	return alerts, nil
}
