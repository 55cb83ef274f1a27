package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// Alert is an operator-visible action item: a sale that needs acknowledging,
// a policy-restricted listing that needs a manual quantity change, or a push
// that failed permanently.
type Alert struct {
	// ID is the generated alert identity
	ID uuid.UUID
	// Title is the short headline shown to operators
	Title string
	// Message is the full description of what happened and what to do
	Message string
	// Location identifies the listing/warehouse location concerned, if any
	Location string
	// SourceChannel is the channel that triggered the alert
	SourceChannel channel.Code
	// CreatedAt is when the alert was raised
	CreatedAt time.Time
}

// NewAlert builds an alert with a fresh identity.
func NewAlert(title, message, location string, source channel.Code) Alert {
	return Alert{
		ID:            uuid.New(),
		Title:         title,
		Message:       message,
		Location:      location,
		SourceChannel: source,
		CreatedAt:     time.Now(),
	}
}

// Notifier raises operator alerts. Fire-and-forget: implementations log
// delivery failures instead of returning them, so a broken alert channel can
// never abort a committed stock change.
type Notifier interface {
	Notify(ctx context.Context, alert Alert)
}
