package channel

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// External order value objects
// ---------------------------------------------------------------------------

// ExternalOrder is an order as reported by a channel. Only the identity,
// creation time, status and line items are consumed by the reconciliation
// engine; the monetary fields are carried through to the order ledger for
// audit purposes.
type ExternalOrder struct {
	// ExternalOrderID is the order ID on the channel
	ExternalOrderID string
	// Channel identifies which channel this order came from
	Channel Code
	// Status is the channel-reported order status, verbatim
	Status string
	// BuyerName is the buyer's display name on the channel
	BuyerName string
	// TotalAmount is what the buyer paid
	TotalAmount decimal.Decimal
	// Currency is the payment currency
	Currency string
	// Lines contains the order line items
	Lines []OrderLine
	// CreatedAt is when the order was created on the channel
	CreatedAt time.Time
	// RawData is the original channel response (JSON), kept for audit
	RawData string
}

// OrderLine is a single (sku, quantity) pair within an external order.
type OrderLine struct {
	// SKU is the stock-keeping unit sold
	SKU string
	// Quantity is the quantity sold
	Quantity int64
	// UnitPrice is the per-unit sale price
	UnitPrice decimal.Decimal
}

// ---------------------------------------------------------------------------
// Push outcomes
// ---------------------------------------------------------------------------

// PushOutcome is the result of pushing a stock quantity to a channel.
// It is tri-state rather than boolean: a policy restriction is not an error,
// it is an instruction to raise an operator alert instead.
type PushOutcome string

const (
	// PushOutcomeAccepted indicates the channel accepted the new quantity
	PushOutcomeAccepted PushOutcome = "ACCEPTED"
	// PushOutcomePolicyRestricted indicates the channel's business rules forbid
	// an automated quantity change for this listing; manual action is required
	PushOutcomePolicyRestricted PushOutcome = "POLICY_RESTRICTED"
	// PushOutcomeFailed indicates the push failed after retries
	PushOutcomeFailed PushOutcome = "FAILED"
)

// String returns the string representation of PushOutcome
func (o PushOutcome) String() string {
	return string(o)
}
