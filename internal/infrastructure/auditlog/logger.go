package auditlog

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// StoreLogger implements audit.Logger over an audit.Store. When the store is
// unavailable the entry is appended to a local JSON-lines file instead, so
// the audit trail survives database outages. Log never fails the caller.
type StoreLogger struct {
	store        audit.Store
	fallbackPath string
	logger       *zap.Logger
	mu           sync.Mutex
}

// NewStoreLogger creates a store-backed audit logger with a file fallback
func NewStoreLogger(store audit.Store, fallbackPath string, logger *zap.Logger) *StoreLogger {
	return &StoreLogger{
		store:        store,
		fallbackPath: fallbackPath,
		logger:       logger,
	}
}

// Log records one sync event
func (l *StoreLogger) Log(ctx context.Context, code channel.Code, op audit.Operation, status audit.Status, message string, details map[string]any) {
	entry := &audit.Entry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Channel:   code,
		Operation: op,
		Status:    status,
		Message:   message,
		Details:   details,
	}

	if err := l.store.Append(ctx, entry); err != nil {
		l.logger.Error("sync log store unavailable, writing fallback entry",
			zap.String("channel", code.String()),
			zap.String("operation", string(op)),
			zap.Error(err))
		l.appendFallback(entry)
	}
}

// appendFallback writes one entry to the local JSON-lines file
func (l *StoreLogger) appendFallback(entry *audit.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.fallbackPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.logger.Error("failed to open sync log fallback file",
			zap.String("path", l.fallbackPath), zap.Error(err))
		return
	}
	defer f.Close()

	line, err := json.Marshal(fallbackEntry{
		ID:        entry.ID.String(),
		Timestamp: entry.Timestamp,
		Channel:   entry.Channel.String(),
		Operation: string(entry.Operation),
		Status:    string(entry.Status),
		Message:   entry.Message,
		Details:   entry.Details,
	})
	if err != nil {
		l.logger.Error("failed to encode fallback sync log entry", zap.Error(err))
		return
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		l.logger.Error("failed to append fallback sync log entry",
			zap.String("path", l.fallbackPath), zap.Error(err))
	}
}

// fallbackEntry is the JSON-lines shape of a fallback record
type fallbackEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Channel   string         `json:"channel"`
	Operation string         `json:"operation"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// Ensure StoreLogger implements audit.Logger
var _ audit.Logger = (*StoreLogger)(nil)
