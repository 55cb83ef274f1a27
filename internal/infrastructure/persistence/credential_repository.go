package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/credentials"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/persistence/models"
)

// GormCredentialRepository implements credentials.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// Find returns the stored credential for a channel
func (r *GormCredentialRepository) Find(ctx context.Context, code channel.Code) (*credentials.AccessCredential, error) {
	var model models.AccessCredentialModel
	if err := r.db.WithContext(ctx).First(&model, "channel = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, credentials.ErrCredentialNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists replaced tokens. Upsert keyed by channel; refresh races are
// last-writer-wins, which is safe because every winner holds a valid token.
func (r *GormCredentialRepository) Save(ctx context.Context, cred *credentials.AccessCredential) error {
	var model models.AccessCredentialModel
	model.FromDomain(cred)
	model.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
		}).
		Create(&model).Error
}

// Invalidate clears the tokens so subsequent passes fail fast with
// ErrAuthenticationRequired until a human re-authorizes the channel.
func (r *GormCredentialRepository) Invalidate(ctx context.Context, code channel.Code) error {
	return r.db.WithContext(ctx).
		Model(&models.AccessCredentialModel{}).
		Where("channel = ?", code).
		Updates(map[string]any{
			"access_token":  "",
			"refresh_token": "",
			"expires_at":    time.Time{},
			"updated_at":    time.Now(),
		}).Error
}

// Ensure GormCredentialRepository implements credentials.CredentialRepository
var _ credentials.CredentialRepository = (*GormCredentialRepository)(nil)
