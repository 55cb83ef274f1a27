package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Sync log types
// ---------------------------------------------------------------------------

// Operation names the engine step a log entry describes.
type Operation string

const (
	// OperationOrderSync covers the fetch/dedupe/persist phase of a pass
	OperationOrderSync Operation = "orderSync"
	// OperationTokenRetrieval covers token lookup and refresh
	OperationTokenRetrieval Operation = "tokenRetrieval"
	// OperationStockUpdate covers decrements and cross-channel pushes
	OperationStockUpdate Operation = "stockUpdate"
	// OperationNotification covers operator alerts
	OperationNotification Operation = "notification"
)

// IsValid returns true if the operation is valid
func (o Operation) IsValid() bool {
	switch o {
	case OperationOrderSync, OperationTokenRetrieval, OperationStockUpdate, OperationNotification:
		return true
	default:
		return false
	}
}

// Status is the outcome classification of a log entry.
type Status string

const (
	// StatusInfo records a non-failure observation (dedupe skip, unknown SKU)
	StatusInfo Status = "info"
	// StatusSuccess records a completed step
	StatusSuccess Status = "success"
	// StatusError records a failure, already handled or surfaced by the pass
	StatusError Status = "error"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusInfo, StatusSuccess, StatusError:
		return true
	default:
		return false
	}
}

// Entry is one record in the sync audit trail. Append-only; pruned by an
// age-based retention sweep that runs independently of the passes.
type Entry struct {
	// ID is the generated entry identity
	ID uuid.UUID
	// Timestamp is when the event happened
	Timestamp time.Time
	// Channel is the channel the event concerns
	Channel channel.Code
	// Operation names the engine step
	Operation Operation
	// Status classifies the outcome
	Status Status
	// Message is the human-readable summary
	Message string
	// Details carries structured context (order IDs, SKUs, errors)
	Details map[string]any
}

// DefaultRetention is how long entries are kept before the purge sweep
// deletes them.
const DefaultRetention = 48 * time.Hour

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Logger records sync events. Log must never fail the caller: on store
// failure the implementation falls back to a local append-only file so no
// entry is silently lost.
type Logger interface {
	Log(ctx context.Context, code channel.Code, op Operation, status Status, message string, details map[string]any)
}

// QueryFilter selects entries for the query surface.
type QueryFilter struct {
	// Channel filters by channel (optional)
	Channel *channel.Code
	// Operation filters by operation (optional)
	Operation *Operation
	// Status filters by status (optional)
	Status *Status
	// Since filters entries at or after this time (optional)
	Since *time.Time
	// Page is 1-indexed
	Page int
	// PageSize caps the result; defaulted by the store when out of range
	PageSize int
}

// Store is the queryable, retention-bounded persistence behind Logger.
type Store interface {
	// Append persists one entry
	Append(ctx context.Context, e *Entry) error

	// Query returns matching entries newest-first with the total count
	Query(ctx context.Context, f QueryFilter) ([]Entry, int64, error)

	// Purge deletes entries older than the cutoff and returns how many
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}
