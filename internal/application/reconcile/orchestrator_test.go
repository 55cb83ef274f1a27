package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/audit"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/inventory"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/notification"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/orders"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/lease"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/retry"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type recordedPush struct {
	sku      string
	quantity int64
}

// fakeClient is a scriptable channel.Client
type fakeClient struct {
	code        channel.Code
	orders      []channel.ExternalOrder
	fetchErr    error
	pushOutcome channel.PushOutcome
	pushErr     error
	deleteErr   error

	mu      sync.Mutex
	pushes  []recordedPush
	deletes []string
}

func (c *fakeClient) Code() channel.Code { return c.code }

func (c *fakeClient) FetchRecentOrders(_ context.Context, _ time.Time) ([]channel.ExternalOrder, error) {
	return c.orders, c.fetchErr
}

func (c *fakeClient) PushStockUpdate(_ context.Context, sku string, quantity int64) (channel.PushOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pushErr != nil {
		return channel.PushOutcomeFailed, c.pushErr
	}
	c.pushes = append(c.pushes, recordedPush{sku: sku, quantity: quantity})
	if c.pushOutcome != "" {
		return c.pushOutcome, nil
	}
	return channel.PushOutcomeAccepted, nil
}

func (c *fakeClient) DeleteListing(_ context.Context, sku string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deletes = append(c.deletes, sku)
	return nil
}

func (c *fakeClient) recordedPushes() []recordedPush {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]recordedPush(nil), c.pushes...)
}

func (c *fakeClient) recordedDeletes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deletes...)
}

// fakeRegistry implements channel.Registry over a client slice
type fakeRegistry struct {
	clients []channel.Client
}

func (r *fakeRegistry) Get(code channel.Code) (channel.Client, error) {
	for _, c := range r.clients {
		if c.Code() == code {
			return c, nil
		}
	}
	return nil, channel.ErrNotRegistered
}

func (r *fakeRegistry) All() []channel.Client { return r.clients }

func (r *fakeRegistry) Others(code channel.Code) []channel.Client {
	out := make([]channel.Client, 0)
	for _, c := range r.clients {
		if c.Code() != code {
			out = append(out, c)
		}
	}
	return out
}

// memStockRepo is an in-memory inventory.StockRepository
type memStockRepo struct {
	mu    sync.Mutex
	items map[string]*inventory.StockItem
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{items: make(map[string]*inventory.StockItem)}
}

func (r *memStockRepo) FindBySKU(_ context.Context, sku string) (*inventory.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[sku]
	if !ok {
		return nil, inventory.ErrSKUNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memStockRepo) Decrement(_ context.Context, sku string, n int64) (int64, error) {
	if n <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[sku]
	if !ok {
		return 0, inventory.ErrSKUNotFound
	}
	item.StockQuantity -= n
	if item.StockQuantity < 0 {
		item.StockQuantity = 0
	}
	return item.StockQuantity, nil
}

func (r *memStockRepo) Quantity(_ context.Context, sku string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[sku]
	if !ok {
		return 0, inventory.ErrSKUNotFound
	}
	return item.StockQuantity, nil
}

// memOrderLedger is an in-memory orders.OrderLedger
type memOrderLedger struct {
	mu      sync.Mutex
	records map[string]*orders.ExternalOrderRecord
}

func newMemOrderLedger() *memOrderLedger {
	return &memOrderLedger{records: make(map[string]*orders.ExternalOrderRecord)}
}

func ledgerKey(code channel.Code, externalID string) string {
	return code.String() + "/" + externalID
}

func (l *memOrderLedger) ExistingIDs(_ context.Context, code channel.Code, externalIDs []string) (map[string]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	existing := make(map[string]bool)
	for _, id := range externalIDs {
		if _, ok := l.records[ledgerKey(code, id)]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

func (l *memOrderLedger) Record(_ context.Context, rec *orders.ExternalOrderRecord) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(rec.Channel, rec.ExternalOrderID)
	if _, ok := l.records[key]; ok {
		return false, nil
	}
	l.records[key] = rec
	return true, nil
}

func (l *memOrderLedger) FindByExternalID(_ context.Context, code channel.Code, externalID string) (*orders.ExternalOrderRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[ledgerKey(code, externalID)]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return rec, nil
}

// recordingNotifier captures raised alerts
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []notification.Alert
}

func (n *recordingNotifier) Notify(_ context.Context, alert notification.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
}

func (n *recordingNotifier) recorded() []notification.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Alert(nil), n.alerts...)
}

func (n *recordingNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.alerts))
	for _, a := range n.alerts {
		out = append(out, a.Title)
	}
	return out
}

// recordingAudit captures emitted sync log entries
type recordingAudit struct {
	mu      sync.Mutex
	entries []recordedEntry
}

type recordedEntry struct {
	op      audit.Operation
	status  audit.Status
	message string
	details map[string]any
}

func (a *recordingAudit) Log(_ context.Context, _ channel.Code, op audit.Operation, status audit.Status, message string, details map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, recordedEntry{op: op, status: status, message: message, details: details})
}

func (a *recordingAudit) find(message string) (recordedEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.message == message {
			return e, true
		}
	}
	return recordedEntry{}, false
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	orchestrator *Orchestrator
	registry     *fakeRegistry
	stock        *memStockRepo
	ledger       *memOrderLedger
	notifier     *recordingNotifier
	auditLog     *recordingAudit
	passes       *lease.MemoryLease
}

func newFixture(clients ...channel.Client) *fixture {
	f := &fixture{
		registry: &fakeRegistry{clients: clients},
		stock:    newMemStockRepo(),
		ledger:   newMemOrderLedger(),
		notifier: &recordingNotifier{},
		auditLog: &recordingAudit{},
		passes:   lease.NewMemoryLease(time.Minute),
	}
	retrier := retry.NewExecutor(retry.Config{MaxAttempts: 2, BaseDelay: time.Millisecond}, zap.NewNop())
	f.orchestrator = NewOrchestrator(f.registry, f.stock, f.ledger, retrier, f.passes,
		f.auditLog, f.notifier, Config{RoutineWindow: 10 * time.Minute}, zap.NewNop())
	return f
}

func (f *fixture) addStock(sku string, quantity int64, listedOn ...channel.Code) {
	listings := make(map[channel.Code]bool)
	for _, code := range listedOn {
		listings[code] = true
	}
	f.stock.items[sku] = &inventory.StockItem{
		SKU:           sku,
		StockQuantity: quantity,
		Listings:      listings,
	}
}

func saleOrder(code channel.Code, orderID, sku string, quantity int64) channel.ExternalOrder {
	return channel.ExternalOrder{
		ExternalOrderID: orderID,
		Channel:         code,
		Status:          "NOT_STARTED",
		BuyerName:       "buyer",
		CreatedAt:       time.Now().Add(-time.Minute),
		Lines:           []channel.OrderLine{{SKU: sku, Quantity: quantity}},
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestOrchestrator_RunPass(t *testing.T) {
	ctx := context.Background()

	t.Run("new order decrements stock and propagates to listed channels", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeEbayOne, "ORD-1", "SKU-1", 2)}}
		listed := &fakeClient{code: channel.CodeSears}
		unlisted := &fakeClient{code: channel.CodeEbayTwo}
		f := newFixture(origin, listed, unlisted)
		f.addStock("SKU-1", 10, channel.CodeEbayOne, channel.CodeSears)

		summary, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.NewOrders)
		assert.Equal(t, 1, summary.Decrements)
		assert.Empty(t, summary.Errors)

		remaining, err := f.stock.Quantity(ctx, "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, int64(8), remaining)

		require.Len(t, listed.recordedPushes(), 1)
		assert.Equal(t, recordedPush{sku: "SKU-1", quantity: 8}, listed.recordedPushes()[0])
		assert.Empty(t, unlisted.recordedPushes(), "unlisted channel must not be pushed")
		assert.Empty(t, origin.recordedPushes(), "origin channel must not be pushed")
	})

	t.Run("already recorded order is skipped without stock change", func(t *testing.T) {
		order := saleOrder(channel.CodeEbayOne, "ORD-DUP", "SKU-1", 3)
		origin := &fakeClient{code: channel.CodeEbayOne, orders: []channel.ExternalOrder{order}}
		f := newFixture(origin)
		f.addStock("SKU-1", 10, channel.CodeEbayOne)

		_, err := f.ledger.Record(ctx, orders.NewExternalOrderRecord(order))
		require.NoError(t, err)

		summary, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		require.NoError(t, err)
		assert.Equal(t, 0, summary.NewOrders)
		assert.Equal(t, 1, summary.SkippedOrders)

		remaining, err := f.stock.Quantity(ctx, "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, int64(10), remaining)

		entry, found := f.auditLog.find("order already in ledger, skipped")
		require.True(t, found, "dedupe skip must leave a sync log entry")
		assert.Equal(t, audit.StatusInfo, entry.status)
		assert.Equal(t, "ORD-DUP", entry.details["order_id"])
	})

	t.Run("repeated pass over the same window applies stock once", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeEbayOne, "ORD-1", "SKU-1", 2)}}
		f := newFixture(origin)
		f.addStock("SKU-1", 10, channel.CodeEbayOne)

		_, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)
		require.NoError(t, err)
		_, err = f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)
		require.NoError(t, err)

		remaining, err := f.stock.Quantity(ctx, "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, int64(8), remaining)
	})

	t.Run("zero stock deletes listings on other channels", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeEbayOne, "ORD-1", "SKU-LAST", 1)}}
		other := &fakeClient{code: channel.CodeWalmart}
		f := newFixture(origin, other)
		f.addStock("SKU-LAST", 1, channel.CodeEbayOne, channel.CodeWalmart)

		summary, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		require.NoError(t, err)
		assert.Empty(t, summary.Errors)
		assert.Equal(t, []string{"SKU-LAST"}, other.recordedDeletes())
		assert.Empty(t, other.recordedPushes())
	})

	t.Run("oversell clamps at zero and still deletes listings", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeEbayOne, "ORD-1", "SKU-1", 5)}}
		other := &fakeClient{code: channel.CodeSears}
		f := newFixture(origin, other)
		f.addStock("SKU-1", 2, channel.CodeEbayOne, channel.CodeSears)

		_, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		require.NoError(t, err)
		remaining, err := f.stock.Quantity(ctx, "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), remaining)
		assert.Equal(t, []string{"SKU-1"}, other.recordedDeletes())
	})

	t.Run("policy restricted push raises an alert instead of failing", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeEbayOne, "ORD-1", "SKU-R", 1)}}
		restricted := &fakeClient{code: channel.CodeWalmart, pushOutcome: channel.PushOutcomePolicyRestricted}
		f := newFixture(origin, restricted)
		f.addStock("SKU-R", 5, channel.CodeEbayOne, channel.CodeWalmart)

		summary, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		require.NoError(t, err)
		assert.Empty(t, summary.Errors)
		assert.Contains(t, f.notifier.titles(), "Manual quantity change needed on Walmart Marketplace")
	})

	t.Run("one failing branch does not block the others or roll back stock", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeEbayOne, "ORD-1", "SKU-1", 1)}}
		down := &fakeClient{code: channel.CodeWalmart,
			pushErr: fmt.Errorf("%w: connection refused", channel.ErrTransient)}
		up := &fakeClient{code: channel.CodeSears}
		f := newFixture(origin, down, up)
		f.addStock("SKU-1", 10, channel.CodeEbayOne, channel.CodeWalmart, channel.CodeSears)

		summary, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		require.NoError(t, err)
		require.Len(t, summary.Errors, 1)
		assert.Contains(t, summary.Errors[0], "WALMART")
		require.Len(t, up.recordedPushes(), 1)

		remaining, err := f.stock.Quantity(ctx, "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, int64(9), remaining, "local decrement must survive a branch failure")
	})

	t.Run("authentication failure aborts the pass", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne,
			fetchErr: fmt.Errorf("%w: HTTP 401", channel.ErrAuthenticationRequired)}
		f := newFixture(origin)

		_, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		assert.ErrorIs(t, err, channel.ErrAuthenticationRequired)
	})

	t.Run("unknown sku is a no-op", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeEbayOne, "ORD-1", "GHOST", 1)}}
		f := newFixture(origin)

		summary, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.NewOrders)
		assert.Equal(t, 0, summary.Decrements)
		assert.Empty(t, summary.Errors)
	})

	t.Run("cancelled orders are skipped", func(t *testing.T) {
		cancelled := saleOrder(channel.CodeEbayOne, "ORD-C", "SKU-1", 1)
		cancelled.Status = "CANCELLED"
		origin := &fakeClient{code: channel.CodeEbayOne, orders: []channel.ExternalOrder{cancelled}}
		f := newFixture(origin)
		f.addStock("SKU-1", 10, channel.CodeEbayOne)

		summary, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)

		require.NoError(t, err)
		assert.Equal(t, 0, summary.NewOrders)
		assert.Equal(t, 1, summary.SkippedOrders)

		remaining, err := f.stock.Quantity(ctx, "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, int64(10), remaining)
	})

	t.Run("new sale raises an operator alert naming the line items", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeSears,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeSears, "ORD-1", "SKU-1", 2)}}
		f := newFixture(origin)
		f.addStock("SKU-1", 10, channel.CodeSears)

		_, err := f.orchestrator.RunPass(ctx, channel.CodeSears, 0)

		require.NoError(t, err)
		require.Contains(t, f.notifier.titles(), "New sale on Sears Marketplace")
		for _, alert := range f.notifier.recorded() {
			if alert.Title == "New sale on Sears Marketplace" {
				assert.Contains(t, alert.Message, "SKU-1 x2")
			}
		}
	})

	t.Run("held lease skips the pass", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne}
		f := newFixture(origin)

		ok, err := f.passes.Acquire(ctx, channel.CodeEbayOne)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)
		assert.ErrorIs(t, err, ErrPassAlreadyRunning)
	})

	t.Run("lease is released after the pass", func(t *testing.T) {
		origin := &fakeClient{code: channel.CodeEbayOne}
		f := newFixture(origin)

		_, err := f.orchestrator.RunPass(ctx, channel.CodeEbayOne, 0)
		require.NoError(t, err)

		ok, err := f.passes.Acquire(ctx, channel.CodeEbayOne)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unregistered channel fails", func(t *testing.T) {
		f := newFixture(&fakeClient{code: channel.CodeEbayOne})

		_, err := f.orchestrator.RunPass(ctx, channel.CodeWalmart, 0)
		assert.ErrorIs(t, err, channel.ErrNotRegistered)
	})
}

func TestOrchestrator_RunAll(t *testing.T) {
	t.Run("runs every registered channel", func(t *testing.T) {
		one := &fakeClient{code: channel.CodeEbayOne,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeEbayOne, "ORD-A", "SKU-1", 1)}}
		two := &fakeClient{code: channel.CodeSears,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeSears, "ORD-B", "SKU-1", 2)}}
		f := newFixture(one, two)
		f.addStock("SKU-1", 10, channel.CodeEbayOne, channel.CodeSears)

		summaries := f.orchestrator.RunAll(context.Background(), 0)

		require.Len(t, summaries, 2)
		total := 0
		for _, s := range summaries {
			total += s.NewOrders
		}
		assert.Equal(t, 2, total)

		remaining, err := f.stock.Quantity(context.Background(), "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), remaining)
	})

	t.Run("a failing channel does not affect the others", func(t *testing.T) {
		down := &fakeClient{code: channel.CodeEbayOne,
			fetchErr: fmt.Errorf("%w: HTTP 503", channel.ErrTransient)}
		up := &fakeClient{code: channel.CodeSears,
			orders: []channel.ExternalOrder{saleOrder(channel.CodeSears, "ORD-B", "SKU-1", 1)}}
		f := newFixture(down, up)
		f.addStock("SKU-1", 5, channel.CodeSears)

		summaries := f.orchestrator.RunAll(context.Background(), 0)

		require.Len(t, summaries, 2)
		byChannel := make(map[channel.Code]*PassSummary)
		for _, s := range summaries {
			byChannel[s.Channel] = s
		}
		assert.NotEmpty(t, byChannel[channel.CodeEbayOne].Errors)
		assert.Equal(t, 1, byChannel[channel.CodeSears].NewOrders)
	})
}
