package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/notification"
)

// AlertModel is the persistence model for operator alerts.
type AlertModel struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key"`
	Title         string       `gorm:"type:varchar(255);not null"`
	Message       string       `gorm:"type:text"`
	Location      string       `gorm:"type:varchar(100)"`
	SourceChannel channel.Code `gorm:"type:varchar(20);not null;index"`
	CreatedAt     time.Time    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AlertModel) TableName() string {
	return "alerts"
}

// FromDomain populates the persistence model from a domain Alert.
func (m *AlertModel) FromDomain(a notification.Alert) {
	m.ID = a.ID
	m.Title = a.Title
	m.Message = a.Message
	m.Location = a.Location
	m.SourceChannel = a.SourceChannel
	m.CreatedAt = a.CreatedAt
}

// ToDomain converts the persistence model to a domain Alert.
func (m *AlertModel) ToDomain() notification.Alert {
	return notification.Alert{
		ID:            m.ID,
		Title:         m.Title,
		Message:       m.Message,
		Location:      m.Location,
		SourceChannel: m.SourceChannel,
		CreatedAt:     m.CreatedAt,
	}
}
