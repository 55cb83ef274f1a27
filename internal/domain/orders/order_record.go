package orders

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// ErrOrderNotFound indicates no record exists for the idempotency key
var ErrOrderNotFound = errors.New("orders: order record not found")

// ExternalOrderRecord is the append-only idempotency record for an order
// ingested from a channel. The (Channel, ExternalOrderID) pair is the
// idempotency key: an order may be fetched repeatedly across overlapping
// windows but is recorded, and its stock applied, at most once. Records are
// never updated or deleted by the engine.
type ExternalOrderRecord struct {
	// ID is the generated record identity
	ID uuid.UUID
	// Channel is the source channel
	Channel channel.Code
	// ExternalOrderID is the order ID on the channel
	ExternalOrderID string
	// Status is the channel-reported status at ingestion time
	Status string
	// Lines are the (sku, quantity) pairs the engine applied
	Lines []channel.OrderLine
	// OrderedAt is the creation time reported by the channel
	OrderedAt time.Time
	// IngestedAt is when this engine first saw the order
	IngestedAt time.Time
}

// NewExternalOrderRecord builds a record from a fetched channel order.
func NewExternalOrderRecord(o channel.ExternalOrder) *ExternalOrderRecord {
	return &ExternalOrderRecord{
		ID:              uuid.New(),
		Channel:         o.Channel,
		ExternalOrderID: o.ExternalOrderID,
		Status:          o.Status,
		Lines:           o.Lines,
		OrderedAt:       o.CreatedAt,
		IngestedAt:      time.Now(),
	}
}
