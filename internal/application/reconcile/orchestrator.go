package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/credentials"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/inventory"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/notification"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/orders"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/lease"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/retry"
)

// ErrPassAlreadyRunning indicates the channel's pass lease is held, by this
// process or another reconciler instance. The caller skips the pass.
var ErrPassAlreadyRunning = errors.New("reconcile: pass already running for channel")

// Config holds the pass windows and timeout
type Config struct {
	// RoutineWindow is how far back a scheduled pass looks for new orders
	RoutineWindow time.Duration
	// PassTimeout bounds one channel pass end to end; zero means unbounded
	PassTimeout time.Duration
}

// PassSummary reports what one channel pass did.
type PassSummary struct {
	// Channel is the channel the pass ran for
	Channel channel.Code
	// StartedAt is when the pass began
	StartedAt time.Time
	// Duration is how long the pass took
	Duration time.Duration
	// FetchedOrders is how many orders the channel reported in the window
	FetchedOrders int
	// NewOrders is how many orders were ingested for the first time
	NewOrders int
	// SkippedOrders is how many fetched orders were already recorded or cancelled
	SkippedOrders int
	// Decrements is how many stock lines were applied
	Decrements int
	// Propagations is how many cross-channel pushes or deletes succeeded
	Propagations int
	// Alerts is how many operator alerts were raised
	Alerts int
	// Errors collects per-step failures the pass survived
	Errors []string
}

// Orchestrator runs reconciliation passes: fetch recent orders from a
// channel, ingest the new ones exactly once, apply their stock decrements,
// and propagate the new quantities to every other channel the SKU is listed
// on. Branch failures are isolated: one channel's outage never rolls back the
// local stock change or blocks the other branches.
type Orchestrator struct {
	registry channel.Registry
	stock    inventory.StockRepository
	ledger   orders.OrderLedger
	retrier  *retry.Executor
	passes   lease.PassLease
	auditLog audit.Logger
	notifier notification.Notifier
	config   Config
	logger   *zap.Logger
}

// NewOrchestrator creates a reconciliation orchestrator
func NewOrchestrator(
	registry channel.Registry,
	stock inventory.StockRepository,
	ledger orders.OrderLedger,
	retrier *retry.Executor,
	passes lease.PassLease,
	auditLog audit.Logger,
	notifier notification.Notifier,
	config Config,
	logger *zap.Logger,
) *Orchestrator {
	if config.RoutineWindow <= 0 {
		config.RoutineWindow = 10 * time.Minute
	}
	return &Orchestrator{
		registry: registry,
		stock:    stock,
		ledger:   ledger,
		retrier:  retrier,
		passes:   passes,
		auditLog: auditLog,
		notifier: notifier,
		config:   config,
		logger:   logger,
	}
}

// ---------------------------------------------------------------------------
// Pass entry points
// ---------------------------------------------------------------------------

// RunPass runs one reconciliation pass for a channel. A zero window uses the
// configured routine window; manual re-syncs pass a wider one. Returns
// ErrPassAlreadyRunning when the channel lease is held.
func (o *Orchestrator) RunPass(ctx context.Context, code channel.Code, window time.Duration) (*PassSummary, error) {
	client, err := o.registry.Get(code)
	if err != nil {
		return nil, err
	}

	acquired, err := o.passes.Acquire(ctx, code)
	if err != nil {
		return nil, err
	}
	if !acquired {
		o.logger.Info("Skipping pass, lease held",
			zap.String("channel", code.String()))
		return nil, ErrPassAlreadyRunning
	}
	defer func() {
		if err := o.passes.Release(context.WithoutCancel(ctx), code); err != nil {
			o.logger.Error("Failed to release pass lease",
				zap.String("channel", code.String()), zap.Error(err))
		}
	}()

	if o.config.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.PassTimeout)
		defer cancel()
	}

	if window <= 0 {
		window = o.config.RoutineWindow
	}

	summary := &PassSummary{Channel: code, StartedAt: time.Now()}
	err = o.runPass(ctx, client, window, summary)
	summary.Duration = time.Since(summary.StartedAt)

	o.logger.Info("Pass finished",
		zap.String("channel", code.String()),
		zap.Int("fetched", summary.FetchedOrders),
		zap.Int("new", summary.NewOrders),
		zap.Int("decrements", summary.Decrements),
		zap.Int("errors", len(summary.Errors)),
		zap.Duration("duration", summary.Duration))

	return summary, err
}

// RunAll runs one pass per registered channel concurrently. Each channel's
// pass is independent; a failing channel contributes its error to the result
// without affecting the others.
func (o *Orchestrator) RunAll(ctx context.Context, window time.Duration) []*PassSummary {
	clients := o.registry.All()
	summaries := make([]*PassSummary, len(clients))

	var wg sync.WaitGroup
	for i, client := range clients {
		wg.Add(1)
		go func(i int, code channel.Code) {
			defer wg.Done()
			summary, err := o.RunPass(ctx, code, window)
			if summary == nil {
				summary = &PassSummary{Channel: code, StartedAt: time.Now()}
			}
			if err != nil && !errors.Is(err, ErrPassAlreadyRunning) {
				summary.Errors = append(summary.Errors, err.Error())
			}
			summaries[i] = summary
		}(i, client.Code())
	}
	wg.Wait()

	return summaries
}

// ---------------------------------------------------------------------------
// Pass phases
// ---------------------------------------------------------------------------

// runPass executes the fetch/dedupe/ingest/propagate phases
func (o *Orchestrator) runPass(ctx context.Context, client channel.Client, window time.Duration, summary *PassSummary) error {
	code := client.Code()
	since := time.Now().Add(-window)

	fetched, err := o.fetchOrders(ctx, client, since)
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		if isAuthError(err) {
			// The channel cannot be reached until a human re-authorizes it;
			// there is nothing left for this pass to do.
			o.auditLog.Log(ctx, code, audit.OperationOrderSync, audit.StatusError,
				"pass aborted: channel needs re-authorization", map[string]any{"error": err.Error()})
			return err
		}
		o.auditLog.Log(ctx, code, audit.OperationOrderSync, audit.StatusError,
			"order fetch failed", map[string]any{"error": err.Error()})
		return err
	}
	summary.FetchedOrders = len(fetched)

	newOrders, err := o.dedupe(ctx, code, fetched, summary)
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		o.auditLog.Log(ctx, code, audit.OperationOrderSync, audit.StatusError,
			"dedupe lookup failed", map[string]any{"error": err.Error()})
		return err
	}

	for i := range newOrders {
		o.ingestOrder(ctx, client, &newOrders[i], summary)
	}

	o.auditLog.Log(ctx, code, audit.OperationOrderSync, audit.StatusSuccess,
		fmt.Sprintf("pass complete: %d fetched, %d new", summary.FetchedOrders, summary.NewOrders),
		map[string]any{
			"fetched": summary.FetchedOrders,
			"new":     summary.NewOrders,
			"skipped": summary.SkippedOrders,
			"window":  window.String(),
		})
	return nil
}

// fetchOrders pulls the channel's recent orders with bounded retries
func (o *Orchestrator) fetchOrders(ctx context.Context, client channel.Client, since time.Time) ([]channel.ExternalOrder, error) {
	var fetched []channel.ExternalOrder
	err := o.retrier.Do(ctx, "fetch_orders", func(ctx context.Context) error {
		var err error
		fetched, err = client.FetchRecentOrders(ctx, since)
		return err
	})
	return fetched, err
}

// dedupe filters out orders already recorded in the ledger and orders the
// channel reports as cancelled
func (o *Orchestrator) dedupe(ctx context.Context, code channel.Code, fetched []channel.ExternalOrder, summary *PassSummary) ([]channel.ExternalOrder, error) {
	if len(fetched) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(fetched))
	for i := range fetched {
		ids = append(ids, fetched[i].ExternalOrderID)
	}

	var existing map[string]bool
	err := o.retrier.Do(ctx, "existing_ids", func(ctx context.Context) error {
		var err error
		existing, err = o.ledger.ExistingIDs(ctx, code, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	fresh := make([]channel.ExternalOrder, 0, len(fetched))
	for i := range fetched {
		order := fetched[i]
		switch {
		case existing[order.ExternalOrderID]:
			summary.SkippedOrders++
			o.auditLog.Log(ctx, code, audit.OperationOrderSync, audit.StatusInfo,
				"order already in ledger, skipped", map[string]any{"order_id": order.ExternalOrderID})
		case isCancelled(order.Status):
			summary.SkippedOrders++
			o.auditLog.Log(ctx, code, audit.OperationOrderSync, audit.StatusInfo,
				"skipping cancelled order", map[string]any{"order_id": order.ExternalOrderID})
		default:
			fresh = append(fresh, order)
		}
	}
	return fresh, nil
}

// ingestOrder records one order and applies its stock effects. The record is
// persisted before any stock change: a crash between the two leaves an order
// whose decrement is lost rather than one applied twice, and the loss is
// visible in the ledger.
func (o *Orchestrator) ingestOrder(ctx context.Context, client channel.Client, order *channel.ExternalOrder, summary *PassSummary) {
	code := client.Code()
	rec := orders.NewExternalOrderRecord(*order)

	var inserted bool
	err := o.retrier.Do(ctx, "record_order", func(ctx context.Context) error {
		var err error
		inserted, err = o.ledger.Record(ctx, rec)
		return err
	})
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("record %s: %v", order.ExternalOrderID, err))
		o.auditLog.Log(ctx, code, audit.OperationOrderSync, audit.StatusError,
			"failed to record order", map[string]any{"order_id": order.ExternalOrderID, "error": err.Error()})
		return
	}
	if !inserted {
		// Lost a race with an overlapping pass; the winner applied the stock.
		summary.SkippedOrders++
		o.auditLog.Log(ctx, code, audit.OperationOrderSync, audit.StatusInfo,
			"order already recorded", map[string]any{"order_id": order.ExternalOrderID})
		return
	}
	summary.NewOrders++

	o.notify(ctx, summary, notification.NewAlert(
		"New sale on "+code.DisplayName(),
		fmt.Sprintf("Order %s from %s needs acknowledging (%s)",
			order.ExternalOrderID, order.BuyerName, describeLines(order.Lines)),
		"", code))

	for _, line := range order.Lines {
		o.applyLine(ctx, client, order.ExternalOrderID, line, summary)
	}
}

// applyLine decrements local stock for one order line and propagates the new
// quantity to the other channels
func (o *Orchestrator) applyLine(ctx context.Context, client channel.Client, orderID string, line channel.OrderLine, summary *PassSummary) {
	code := client.Code()

	item, err := o.stock.FindBySKU(ctx, line.SKU)
	if err != nil {
		if errors.Is(err, inventory.ErrSKUNotFound) {
			// The channel sold something this catalog does not track.
			o.auditLog.Log(ctx, code, audit.OperationStockUpdate, audit.StatusInfo,
				"unknown sku, no stock applied", map[string]any{"order_id": orderID, "sku": line.SKU})
			return
		}
		summary.Errors = append(summary.Errors, fmt.Sprintf("lookup %s: %v", line.SKU, err))
		return
	}

	var newQuantity int64
	err = o.retrier.Do(ctx, "decrement_stock", func(ctx context.Context) error {
		var err error
		newQuantity, err = o.stock.Decrement(ctx, line.SKU, line.Quantity)
		return err
	})
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("decrement %s: %v", line.SKU, err))
		o.auditLog.Log(ctx, code, audit.OperationStockUpdate, audit.StatusError,
			"stock decrement failed", map[string]any{"order_id": orderID, "sku": line.SKU, "error": err.Error()})
		return
	}
	summary.Decrements++

	o.auditLog.Log(ctx, code, audit.OperationStockUpdate, audit.StatusSuccess,
		fmt.Sprintf("stock decremented for %s", line.SKU),
		map[string]any{"order_id": orderID, "sku": line.SKU, "sold": line.Quantity, "remaining": newQuantity})

	o.propagate(ctx, code, item, line.SKU, newQuantity, summary)
}

// ---------------------------------------------------------------------------
// Cross-channel propagation
// ---------------------------------------------------------------------------

// branchResult is one propagation branch's outcome
type branchResult struct {
	code    channel.Code
	outcome channel.PushOutcome
	err     error
}

// propagate fans the new quantity out to every other channel the SKU is
// listed on and joins on all branches. Failures are collected per branch, not
// raced: a down channel contributes an error while the rest proceed.
func (o *Orchestrator) propagate(ctx context.Context, origin channel.Code, item *inventory.StockItem, sku string, quantity int64, summary *PassSummary) {
	targets := make([]channel.Client, 0)
	for _, other := range o.registry.Others(origin) {
		if item.ListedOn(other.Code()) {
			targets = append(targets, other)
		}
	}
	if len(targets) == 0 {
		return
	}

	results := make([]branchResult, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target channel.Client) {
			defer wg.Done()
			results[i] = o.pushBranch(ctx, target, sku, quantity)
		}(i, target)
	}
	wg.Wait()

	for _, res := range results {
		switch {
		case res.err != nil:
			summary.Errors = append(summary.Errors, fmt.Sprintf("propagate %s to %s: %v", sku, res.code, res.err))
			o.auditLog.Log(ctx, res.code, audit.OperationStockUpdate, audit.StatusError,
				"propagation failed", map[string]any{"sku": sku, "quantity": quantity, "error": res.err.Error()})
			if isAuthError(res.err) {
				o.notify(ctx, summary, notification.NewAlert(
					res.code.DisplayName()+" needs re-authorization",
					fmt.Sprintf("Stock update for %s could not be delivered; re-run the authorization handshake", sku),
					"", res.code))
			}
		case res.outcome == channel.PushOutcomePolicyRestricted:
			o.auditLog.Log(ctx, res.code, audit.OperationStockUpdate, audit.StatusInfo,
				"listing policy restricted, manual update needed", map[string]any{"sku": sku, "quantity": quantity})
			o.notify(ctx, summary, notification.NewAlert(
				"Manual quantity change needed on "+res.code.DisplayName(),
				fmt.Sprintf("Listing %s is policy restricted; set quantity to %d by hand", sku, quantity),
				"", res.code))
		default:
			summary.Propagations++
			o.auditLog.Log(ctx, res.code, audit.OperationStockUpdate, audit.StatusSuccess,
				"stock propagated", map[string]any{"sku": sku, "quantity": quantity})
		}
	}
}

// pushBranch updates one target channel: push the new quantity, or delete the
// listing when stock hit zero
func (o *Orchestrator) pushBranch(ctx context.Context, target channel.Client, sku string, quantity int64) branchResult {
	res := branchResult{code: target.Code(), outcome: channel.PushOutcomeAccepted}

	if quantity == 0 {
		err := o.retrier.Do(ctx, "delete_listing", func(ctx context.Context) error {
			return target.DeleteListing(ctx, sku)
		})
		if err != nil && !errors.Is(err, channel.ErrNotFound) {
			res.err = err
		}
		return res
	}

	err := o.retrier.Do(ctx, "push_stock", func(ctx context.Context) error {
		outcome, err := target.PushStockUpdate(ctx, sku, quantity)
		res.outcome = outcome
		return err
	})
	if err != nil {
		res.err = err
	}
	return res
}

// notify raises an alert and counts it in the summary
func (o *Orchestrator) notify(ctx context.Context, summary *PassSummary, alert notification.Alert) {
	o.notifier.Notify(ctx, alert)
	summary.Alerts++
}

// describeLines renders an order's line items for the operator alert
func describeLines(lines []channel.OrderLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s x%d", line.SKU, line.Quantity))
	}
	return strings.Join(parts, ", ")
}

// isCancelled reports whether a channel-reported status means the order was
// cancelled before fulfillment
func isCancelled(status string) bool {
	return strings.Contains(strings.ToUpper(status), "CANCEL")
}

// isAuthError reports whether the failure requires human re-authorization
func isAuthError(err error) bool {
	return errors.Is(err, credentials.ErrAuthenticationRequired) ||
		errors.Is(err, channel.ErrAuthenticationRequired)
}
