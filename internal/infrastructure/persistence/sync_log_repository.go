package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/persistence/models"
)

// defaultLogPageSize caps query pages when the filter gives no sensible size
const defaultLogPageSize = 50

// GormSyncLogStore implements audit.Store using GORM
type GormSyncLogStore struct {
	db *gorm.DB
}

// NewGormSyncLogStore creates a new GormSyncLogStore
func NewGormSyncLogStore(db *gorm.DB) *GormSyncLogStore {
	return &GormSyncLogStore{db: db}
}

// Append persists one entry
func (r *GormSyncLogStore) Append(ctx context.Context, e *audit.Entry) error {
	var model models.SyncLogModel
	model.FromDomain(e)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Query returns matching entries newest-first with the total count
func (r *GormSyncLogStore) Query(ctx context.Context, f audit.QueryFilter) ([]audit.Entry, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SyncLogModel{})

	if f.Channel != nil {
		q = q.Where("channel = ?", *f.Channel)
	}
	if f.Operation != nil {
		q = q.Where("operation = ?", *f.Operation)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Since != nil {
		q = q.Where("timestamp >= ?", *f.Since)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 || pageSize > 500 {
		pageSize = defaultLogPageSize
	}

	var logModels []models.SyncLogModel
	if err := q.Order("timestamp DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]audit.Entry, len(logModels))
	for i, model := range logModels {
		entries[i] = *model.ToDomain()
	}
	return entries, total, nil
}

// Purge deletes entries older than the cutoff and returns how many
func (r *GormSyncLogStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("timestamp < ?", olderThan).
		Delete(&models.SyncLogModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormSyncLogStore implements audit.Store
var _ audit.Store = (*GormSyncLogStore)(nil)
