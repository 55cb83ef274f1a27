package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// SyncLogModel is the persistence model for audit.Entry. Indexed by
// timestamp, channel and status for the query and purge surfaces.
type SyncLogModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	Timestamp   time.Time       `gorm:"not null;index:idx_sync_logs_timestamp"`
	Channel     channel.Code    `gorm:"type:varchar(20);not null;index:idx_sync_logs_channel"`
	Operation   audit.Operation `gorm:"type:varchar(30);not null"`
	Status      audit.Status    `gorm:"type:varchar(10);not null;index:idx_sync_logs_status"`
	Message     string          `gorm:"type:text"`
	DetailsJSON string          `gorm:"type:jsonb;column:details"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain audit.Entry.
func (m *SyncLogModel) ToDomain() *audit.Entry {
	e := &audit.Entry{
		ID:        m.ID,
		Timestamp: m.Timestamp,
		Channel:   m.Channel,
		Operation: m.Operation,
		Status:    m.Status,
		Message:   m.Message,
	}
	if m.DetailsJSON != "" {
		var details map[string]any
		if err := json.Unmarshal([]byte(m.DetailsJSON), &details); err == nil {
			e.Details = details
		}
	}
	return e
}

// FromDomain populates the persistence model from a domain audit.Entry.
func (m *SyncLogModel) FromDomain(e *audit.Entry) {
	m.ID = e.ID
	m.Timestamp = e.Timestamp
	m.Channel = e.Channel
	m.Operation = e.Operation
	m.Status = e.Status
	m.Message = e.Message

	if len(e.Details) > 0 {
		if jsonBytes, err := json.Marshal(e.Details); err == nil {
			m.DetailsJSON = string(jsonBytes)
		}
	} else {
		m.DetailsJSON = "{}"
	}
}
