package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/application/reconcile"
)

// ErrInvalidConfig is returned when the trigger configuration is invalid
var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

// PassRunner runs one reconciliation round across every channel
type PassRunner interface {
	RunAll(ctx context.Context, window time.Duration) []*reconcile.PassSummary
}

// RetentionPurger performs one sync log retention sweep
type RetentionPurger interface {
	Run(ctx context.Context) (int64, error)
}

// TriggerConfig holds the daemon trigger settings
type TriggerConfig struct {
	// Interval is how often a reconciliation round is started
	Interval time.Duration
	// PurgeInterval is how often the sync log retention sweep runs
	PurgeInterval time.Duration
}

// DefaultTriggerConfig returns the default daemon schedule
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		Interval:      5 * time.Minute,
		PurgeInterval: time.Hour,
	}
}

// Validate checks the trigger settings
func (c *TriggerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.PurgeInterval <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Trigger drives the reconciliation daemon: a round across every channel on
// each tick, plus a periodic retention sweep of the sync log. The per-channel
// lease inside the runner keeps overlapping rounds from doubling up, so a
// slow round simply causes the next tick's passes to be skipped.
type Trigger struct {
	config TriggerConfig
	runner PassRunner
	purger RetentionPurger
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewTrigger creates a daemon trigger
func NewTrigger(config TriggerConfig, runner PassRunner, purger RetentionPurger, logger *zap.Logger) (*Trigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Trigger{
		config: config,
		runner: runner,
		purger: purger,
		logger: logger,
	}, nil
}

// Start starts the trigger loops
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(2)
	go t.runLoop(ctx)
	go t.purgeLoop(ctx)

	t.logger.Info("Reconciliation trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Duration("purge_interval", t.config.PurgeInterval),
	)
	return nil
}

// Stop stops the trigger and waits for in-flight work to finish
func (t *Trigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Reconciliation trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop starts a reconciliation round on every tick
func (t *Trigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	t.runRound(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runRound(ctx)
		}
	}
}

// runRound runs one round across every channel and logs the aggregate
func (t *Trigger) runRound(ctx context.Context) {
	summaries := t.runner.RunAll(ctx, 0)

	var newOrders, decrements, failures int
	for _, s := range summaries {
		if s == nil {
			continue
		}
		newOrders += s.NewOrders
		decrements += s.Decrements
		failures += len(s.Errors)
	}

	t.logger.Info("Reconciliation round finished",
		zap.Int("channels", len(summaries)),
		zap.Int("new_orders", newOrders),
		zap.Int("decrements", decrements),
		zap.Int("failures", failures),
	)
}

// purgeLoop runs the sync log retention sweep on its own schedule
func (t *Trigger) purgeLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.purger.Run(ctx); err != nil {
				t.logger.Error("Retention sweep failed", zap.Error(err))
			}
		}
	}
}
