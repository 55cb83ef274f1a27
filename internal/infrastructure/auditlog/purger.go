package auditlog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
)

// Purger deletes sync log entries past the retention window.
type Purger struct {
	store     audit.Store
	retention time.Duration
	logger    *zap.Logger
}

// NewPurger creates a retention purger
func NewPurger(store audit.Store, retention time.Duration, logger *zap.Logger) *Purger {
	if retention <= 0 {
		retention = audit.DefaultRetention
	}
	return &Purger{store: store, retention: retention, logger: logger}
}

// Run performs one retention sweep and returns how many entries were deleted
func (p *Purger) Run(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.store.Purge(ctx, cutoff)
	if err != nil {
		p.logger.Error("sync log purge failed", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("purged expired sync log entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}
