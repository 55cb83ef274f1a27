package models

import (
	"time"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/credentials"
)

// AccessCredentialModel is the persistence model for AccessCredential.
// One row per channel, keyed by channel code.
type AccessCredentialModel struct {
	Channel      channel.Code `gorm:"type:varchar(20);primary_key"`
	AccessToken  string       `gorm:"type:text"`
	RefreshToken string       `gorm:"type:text"`
	ExpiresAt    time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccessCredentialModel) TableName() string {
	return "access_credentials"
}

// ToDomain converts the persistence model to a domain AccessCredential.
func (m *AccessCredentialModel) ToDomain() *credentials.AccessCredential {
	return &credentials.AccessCredential{
		Channel:      m.Channel,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain AccessCredential.
func (m *AccessCredentialModel) FromDomain(c *credentials.AccessCredential) {
	m.Channel = c.Channel
	m.AccessToken = c.AccessToken
	m.RefreshToken = c.RefreshToken
	m.ExpiresAt = c.ExpiresAt
	m.UpdatedAt = c.UpdatedAt
}
