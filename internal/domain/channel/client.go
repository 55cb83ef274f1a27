package channel

import (
	"context"
	"time"
)

// Client is the port interface every sales channel implements. It follows the
// Ports & Adapters pattern: the interface lives in the domain layer and the
// concrete HTTP clients (eBay accounts, Walmart, Sears) live in the
// infrastructure layer.
type Client interface {
	// Code returns the channel code this client handles
	Code() Code

	// FetchRecentOrders returns orders created on the channel since the given
	// time. Implementations must return ErrAuthenticationRequired when the
	// channel rejects the access token, and wrap network/5xx/429 failures in
	// ErrTransient. Any other failure is logged by the caller and treated as
	// an empty result.
	FetchRecentOrders(ctx context.Context, since time.Time) ([]ExternalOrder, error)

	// PushStockUpdate pushes an absolute quantity for a SKU to the channel.
	// A PolicyRestricted outcome means the caller must raise an operator
	// alert instead of mutating the listing.
	PushStockUpdate(ctx context.Context, sku string, quantity int64) (PushOutcome, error)

	// DeleteListing removes the channel's listing/inventory record for a SKU.
	// This is the only automatic action permitted when stock reaches zero and
	// every channel must support it.
	DeleteListing(ctx context.Context, sku string) error
}

// Registry provides access to the configured channel clients.
type Registry interface {
	// Get returns the client for the given code, or ErrNotRegistered
	Get(code Code) (Client, error)

	// All returns every registered client in registration order
	All() []Client

	// Others returns every registered client except the given code, used for
	// cross-channel propagation after a local stock change
	Others(code Code) []Client
}
