package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/orders"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/persistence/models"
)

// GormOrderLedger implements orders.OrderLedger using GORM
type GormOrderLedger struct {
	db *gorm.DB
}

// NewGormOrderLedger creates a new GormOrderLedger
func NewGormOrderLedger(db *gorm.DB) *GormOrderLedger {
	return &GormOrderLedger{db: db}
}

// ExistingIDs returns which of the given external order IDs are already recorded
func (r *GormOrderLedger) ExistingIDs(ctx context.Context, code channel.Code, externalIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(externalIDs))
	if len(externalIDs) == 0 {
		return existing, nil
	}

	var found []string
	if err := r.db.WithContext(ctx).
		Model(&models.ExternalOrderModel{}).
		Where("channel = ? AND external_order_id IN ?", code, externalIDs).
		Pluck("external_order_id", &found).Error; err != nil {
		return nil, err
	}

	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// Record persists a new order record. The unique constraint on
// (channel, external_order_id) makes a duplicate insert a silent no-op, so
// two overlapping passes can both attempt the same order safely.
func (r *GormOrderLedger) Record(ctx context.Context, rec *orders.ExternalOrderRecord) (bool, error) {
	var model models.ExternalOrderModel
	model.FromDomain(rec)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel"}, {Name: "external_order_id"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindByExternalID returns the record for an idempotency key
func (r *GormOrderLedger) FindByExternalID(ctx context.Context, code channel.Code, externalID string) (*orders.ExternalOrderRecord, error) {
	var model models.ExternalOrderModel
	if err := r.db.WithContext(ctx).
		Where("channel = ? AND external_order_id = ?", code, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormOrderLedger implements orders.OrderLedger
var _ orders.OrderLedger = (*GormOrderLedger)(nil)
