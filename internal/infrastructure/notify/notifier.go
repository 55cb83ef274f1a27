package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/notification"
)

// AlertStore is the persistence surface the notifier needs
type AlertStore interface {
	Save(ctx context.Context, alert notification.Alert) error
}

// StoreNotifier implements notification.Notifier by persisting alerts for the
// operator dashboard to pick up. Delivery failures are logged and audited but
// never returned: an alert outage must not abort a committed stock change.
type StoreNotifier struct {
	store    AlertStore
	auditLog audit.Logger
	logger   *zap.Logger
}

// NewStoreNotifier creates a store-backed notifier
func NewStoreNotifier(store AlertStore, auditLog audit.Logger, logger *zap.Logger) *StoreNotifier {
	return &StoreNotifier{store: store, auditLog: auditLog, logger: logger}
}

// Notify raises one operator alert
func (n *StoreNotifier) Notify(ctx context.Context, alert notification.Alert) {
	if err := n.store.Save(ctx, alert); err != nil {
		n.logger.Error("failed to persist operator alert",
			zap.String("title", alert.Title),
			zap.String("channel", alert.SourceChannel.String()),
			zap.Error(err))
		n.auditLog.Log(ctx, alert.SourceChannel, audit.OperationNotification, audit.StatusError,
			"alert delivery failed: "+alert.Title, map[string]any{"error": err.Error()})
		return
	}
	n.auditLog.Log(ctx, alert.SourceChannel, audit.OperationNotification, audit.StatusSuccess,
		alert.Title, map[string]any{"alert_id": alert.ID.String()})
}

// Ensure StoreNotifier implements notification.Notifier
var _ notification.Notifier = (*StoreNotifier)(nil)
