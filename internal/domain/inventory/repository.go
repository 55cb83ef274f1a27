package inventory

import "context"

// StockRepository is the port for the authoritative stock ledger.
//
// Decrement must be a single conditional update in the datastore
// (qty = GREATEST(qty - n, 0)); concurrent channel passes race on the same
// row and correctness depends on the statement being atomic, not on any
// application-level lock.
type StockRepository interface {
	// FindBySKU returns the stock item, or ErrSKUNotFound
	FindBySKU(ctx context.Context, sku string) (*StockItem, error)

	// Decrement atomically reduces the quantity by n, clamping at zero, and
	// returns the resulting quantity. Unknown SKU returns ErrSKUNotFound and
	// mutates nothing.
	Decrement(ctx context.Context, sku string, n int64) (int64, error)

	// Quantity returns the current quantity for a SKU, or ErrSKUNotFound
	Quantity(ctx context.Context, sku string) (int64, error)
}
