package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/application/reconcile"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/auditlog"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/channels"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/config"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/lease"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/logger"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/notify"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/persistence"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/retry"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/scheduler"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/token"
)

func main() {
	var (
		channelFlag string
		allFlag     bool
		windowFlag  time.Duration
		daemonFlag  bool
		purgeFlag   bool
	)

	flag.StringVar(&channelFlag, "channel", "", "Run one pass for a single channel (EBAY_ONE, EBAY_TWO, EBAY_THREE, WALMART, SEARS)")
	flag.BoolVar(&allFlag, "all", false, "Run one pass for every channel")
	flag.DurationVar(&windowFlag, "window", 0, "Override the order lookback window (one-shot runs default to the configured manual window)")
	flag.BoolVar(&daemonFlag, "daemon", false, "Run continuously on the configured interval")
	flag.BoolVar(&purgeFlag, "purge-logs", false, "Run one sync log retention sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(cfg, log, channelFlag, allFlag, windowFlag, daemonFlag, purgeFlag); err != nil {
		log.Fatal("Reconciler failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger, channelFlag string, allFlag bool, window time.Duration, daemon, purgeOnly bool) error {
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// Repositories
	stockRepo := persistence.NewGormStockRepository(db.DB)
	orderLedger := persistence.NewGormOrderLedger(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogStore(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)

	// Audit trail and alerts
	auditLogger := auditlog.NewStoreLogger(syncLogRepo, cfg.Sync.LogFallbackPath, log)
	purger := auditlog.NewPurger(syncLogRepo, cfg.Sync.LogRetention, log)
	notifier := notify.NewStoreNotifier(alertRepo, auditLogger, log)

	if purgeOnly {
		deleted, err := purger.Run(context.Background())
		if err != nil {
			return err
		}
		log.Info("Retention sweep complete", zap.Int64("deleted", deleted))
		return nil
	}

	// Channel clients
	tokens := token.NewStore(credentialRepo, cfg.Channels, auditLogger, log)
	registry, err := buildRegistry(cfg.Channels, tokens, log)
	if err != nil {
		return err
	}

	// Pass lease
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	passes := lease.NewRedisLease(redisClient, cfg.Sync.LeaseTTL)

	retrier := retry.NewExecutor(retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
	}, log)

	orchestrator := reconcile.NewOrchestrator(registry, stockRepo, orderLedger, retrier,
		passes, auditLogger, notifier,
		reconcile.Config{
			RoutineWindow: cfg.Sync.RoutineWindow,
			PassTimeout:   cfg.Sync.PassTimeout,
		}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case daemon:
		return runDaemon(ctx, cfg, orchestrator, purger, log)
	case channelFlag != "":
		code := channel.Code(strings.ToUpper(channelFlag))
		if !code.IsValid() {
			return fmt.Errorf("unknown channel %q", channelFlag)
		}
		summary, err := orchestrator.RunPass(ctx, code, resolveWindow(window, cfg.Sync.ManualWindow))
		if err != nil {
			return err
		}
		logSummary(log, summary)
		return nil
	case allFlag:
		for _, summary := range orchestrator.RunAll(ctx, resolveWindow(window, cfg.Sync.ManualWindow)) {
			logSummary(log, summary)
		}
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("one of -channel, -all, -daemon or -purge-logs is required")
	}
}

// resolveWindow picks the lookback for a one-shot invocation. An explicit
// -window flag wins; otherwise the configured manual re-sync window applies,
// since one-shot runs are operator-triggered catch-ups rather than routine
// passes.
func resolveWindow(flagWindow, manualWindow time.Duration) time.Duration {
	if flagWindow > 0 {
		return flagWindow
	}
	return manualWindow
}

// buildRegistry constructs every channel client from its config
func buildRegistry(cfg config.ChannelsConfig, tokens *token.Store, log *zap.Logger) (*channels.ClientRegistry, error) {
	ebayOne, err := channels.NewEbayClient(channel.CodeEbayOne, cfg.EbayOne, tokens, log)
	if err != nil {
		return nil, fmt.Errorf("ebay_one: %w", err)
	}
	ebayTwo, err := channels.NewEbayClient(channel.CodeEbayTwo, cfg.EbayTwo, tokens, log)
	if err != nil {
		return nil, fmt.Errorf("ebay_two: %w", err)
	}
	ebayThree, err := channels.NewEbayClient(channel.CodeEbayThree, cfg.EbayThree, tokens, log)
	if err != nil {
		return nil, fmt.Errorf("ebay_three: %w", err)
	}
	walmart, err := channels.NewWalmartClient(cfg.Walmart, tokens, log)
	if err != nil {
		return nil, fmt.Errorf("walmart: %w", err)
	}
	sears, err := channels.NewSearsClient(cfg.Sears, tokens, log)
	if err != nil {
		return nil, fmt.Errorf("sears: %w", err)
	}
	return channels.NewClientRegistry(ebayOne, ebayTwo, ebayThree, walmart, sears)
}

// runDaemon runs the interval trigger until the process is signalled
func runDaemon(ctx context.Context, cfg *config.Config, orchestrator *reconcile.Orchestrator, purger *auditlog.Purger, log *zap.Logger) error {
	trigger, err := scheduler.NewTrigger(scheduler.TriggerConfig{
		Interval:      cfg.Sync.Interval,
		PurgeInterval: time.Hour,
	}, orchestrator, purger, log)
	if err != nil {
		return err
	}

	if err := trigger.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return trigger.Stop(stopCtx)
}

// logSummary reports one pass result
func logSummary(log *zap.Logger, summary *reconcile.PassSummary) {
	if summary == nil {
		return
	}
	log.Info("Pass summary",
		zap.String("channel", summary.Channel.String()),
		zap.Int("fetched", summary.FetchedOrders),
		zap.Int("new_orders", summary.NewOrders),
		zap.Int("skipped", summary.SkippedOrders),
		zap.Int("decrements", summary.Decrements),
		zap.Int("propagations", summary.Propagations),
		zap.Int("alerts", summary.Alerts),
		zap.Strings("errors", summary.Errors),
	)
}
