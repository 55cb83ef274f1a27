package orders

import (
	"context"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// OrderLedger is the port for the append-only idempotency store of processed
// channel orders. The store enforces a unique constraint on
// (channel, external_order_id); Record treats a constraint conflict as
// success so overlapping passes stay idempotent.
type OrderLedger interface {
	// ExistingIDs returns which of the given external order IDs are already
	// recorded for the channel. Used as the dedupe filter before ingestion.
	ExistingIDs(ctx context.Context, code channel.Code, externalIDs []string) (map[string]bool, error)

	// Record persists a new order record. Inserting an already-recorded
	// (channel, external_order_id) pair is a no-op, not an error; the boolean
	// reports whether a new row was written.
	Record(ctx context.Context, rec *ExternalOrderRecord) (bool, error)

	// FindByExternalID returns the record for an idempotency key, or
	// ErrOrderNotFound
	FindByExternalID(ctx context.Context, code channel.Code, externalID string) (*ExternalOrderRecord, error)
}
