package inventory

import (
	"errors"
	"time"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

var (
	// ErrSKUNotFound indicates no stock item exists for the SKU
	ErrSKUNotFound = errors.New("inventory: sku not found")

	// ErrInvalidQuantity indicates a non-positive decrement was requested
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
)

// StockItem is the authoritative stock record for one SKU. The quantity is
// the single source of truth across every channel; the listing flags record
// which channels currently carry the SKU so propagation can skip the rest.
type StockItem struct {
	// SKU is the stock-keeping unit identity
	SKU string
	// StockQuantity is the authoritative on-hand quantity, never negative
	StockQuantity int64
	// Listings maps each channel to whether the SKU is listed there
	Listings map[channel.Code]bool
	// UpdatedAt is when the quantity last changed
	UpdatedAt time.Time
}

// ListedOn returns true if the SKU is listed on the given channel
func (s *StockItem) ListedOn(code channel.Code) bool {
	return s.Listings[code]
}

// Decrement reduces the quantity by n, clamping at zero. This is the domain
// rule mirrored by the repository's conditional UPDATE; the repository form is
// what concurrent passes actually execute.
func (s *StockItem) Decrement(n int64) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	s.StockQuantity -= n
	if s.StockQuantity < 0 {
		s.StockQuantity = 0
	}
	s.UpdatedAt = time.Now()
	return nil
}
