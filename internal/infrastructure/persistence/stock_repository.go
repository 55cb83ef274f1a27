package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/inventory"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/persistence/models"
)

// GormStockRepository implements inventory.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindBySKU returns the stock item for a SKU
func (r *GormStockRepository) FindBySKU(ctx context.Context, sku string) (*inventory.StockItem, error) {
	var model models.StockItemModel
	if err := r.db.WithContext(ctx).First(&model, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrSKUNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Decrement atomically reduces the quantity by n, clamping at zero.
// The whole operation is one conditional UPDATE: concurrent passes racing on
// the same row serialize inside the database, so there is no read-modify-write
// window to lose an update in.
func (r *GormStockRepository) Decrement(ctx context.Context, sku string, n int64) (int64, error) {
	if n <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}

	var newQuantity int64
	result := r.db.WithContext(ctx).Raw(
		`UPDATE stock_items
		 SET stock_quantity = GREATEST(stock_quantity - ?, 0), updated_at = ?
		 WHERE sku = ?
		 RETURNING stock_quantity`,
		n, time.Now(), sku,
	).Scan(&newQuantity)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, inventory.ErrSKUNotFound
	}
	return newQuantity, nil
}

// Quantity returns the current quantity for a SKU
func (r *GormStockRepository) Quantity(ctx context.Context, sku string) (int64, error) {
	var model models.StockItemModel
	if err := r.db.WithContext(ctx).Select("stock_quantity").First(&model, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, inventory.ErrSKUNotFound
		}
		return 0, err
	}
	return model.StockQuantity, nil
}

// Ensure GormStockRepository implements inventory.StockRepository
var _ inventory.StockRepository = (*GormStockRepository)(nil)
