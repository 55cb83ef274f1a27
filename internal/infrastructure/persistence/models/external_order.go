package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/orders"
)

// ExternalOrderModel is the persistence model for ExternalOrderRecord.
// The unique index on (channel, external_order_id) is the idempotency
// constraint the whole engine leans on.
type ExternalOrderModel struct {
	ID              uuid.UUID    `gorm:"type:uuid;primary_key"`
	Channel         channel.Code `gorm:"type:varchar(20);not null;uniqueIndex:idx_external_orders_channel_order,priority:1"`
	ExternalOrderID string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_external_orders_channel_order,priority:2"`
	Status          string       `gorm:"type:varchar(50)"`
	LinesJSON       string       `gorm:"type:jsonb;column:lines"`
	OrderedAt       time.Time    `gorm:"not null;index"`
	IngestedAt      time.Time    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExternalOrderModel) TableName() string {
	return "external_orders"
}

// ToDomain converts the persistence model to a domain ExternalOrderRecord.
func (m *ExternalOrderModel) ToDomain() *orders.ExternalOrderRecord {
	rec := &orders.ExternalOrderRecord{
		ID:              m.ID,
		Channel:         m.Channel,
		ExternalOrderID: m.ExternalOrderID,
		Status:          m.Status,
		Lines:           make([]channel.OrderLine, 0),
		OrderedAt:       m.OrderedAt,
		IngestedAt:      m.IngestedAt,
	}
	if m.LinesJSON != "" {
		var lines []channel.OrderLine
		if err := json.Unmarshal([]byte(m.LinesJSON), &lines); err == nil {
			rec.Lines = lines
		}
	}
	return rec
}

// FromDomain populates the persistence model from a domain ExternalOrderRecord.
func (m *ExternalOrderModel) FromDomain(rec *orders.ExternalOrderRecord) {
	m.ID = rec.ID
	m.Channel = rec.Channel
	m.ExternalOrderID = rec.ExternalOrderID
	m.Status = rec.Status
	m.OrderedAt = rec.OrderedAt
	m.IngestedAt = rec.IngestedAt

	if len(rec.Lines) > 0 {
		if jsonBytes, err := json.Marshal(rec.Lines); err == nil {
			m.LinesJSON = string(jsonBytes)
		}
	} else {
		m.LinesJSON = "[]"
	}
}
