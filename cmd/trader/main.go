package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/aitrader/config"
	"github.com/alejandrodnm/aitrader/internal/adapters/binance"
	"github.com/alejandrodnm/aitrader/internal/adapters/forexfeed"
	"github.com/alejandrodnm/aitrader/internal/adapters/notify"
	"github.com/alejandrodnm/aitrader/internal/adapters/predictor"
	"github.com/alejandrodnm/aitrader/internal/adapters/redislock"
	"github.com/alejandrodnm/aitrader/internal/adapters/storage"
	appengine "github.com/alejandrodnm/aitrader/internal/application/engine"
	"github.com/alejandrodnm/aitrader/internal/application/replay"
	"github.com/alejandrodnm/aitrader/internal/application/risk"
	appsignal "github.com/alejandrodnm/aitrader/internal/application/signal"
	"github.com/alejandrodnm/aitrader/internal/application/trader"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one trading cycle and exit")
	status := flag.Bool("status", false, "print portfolio status and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print trade and position tables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("aitrader starting",
		"config", *configPath,
		"interval", cfg.Interval(),
		"initial_balance", cfg.Trading.InitialBalance,
		"once", *once,
		"status", *status,
	)

	ledger, err := storage.NewSQLiteLedger(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open ledger", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer ledger.Close()

	var lock ports.SessionLock
	if cfg.Lock.Backend == "redis" {
		lock = redislock.New(cfg.Lock.RedisAddr, "aitrader")
	} else {
		lock = storage.NewSQLiteLock(ledger)
	}

	var forexFeed ports.MarketDataFeed
	if cfg.Feeds.ForexBase != "" {
		forexFeed = forexfeed.NewClient(cfg.Feeds.ForexBase)
	}

	t := buildTrader(cfg, ledger, lock, forexFeed)

	notifiers := []ports.Notifier{notify.NewConsole(*table || *status)}
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("telegram notifier disabled", "err", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *status {
		if err := printStatus(ctx, t, notifiers); err != nil {
			slog.Error("status query failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, t, notifiers, *once); err != nil {
		slog.Error("trader exited with error", "err", err)
		os.Exit(1)
	}
	slog.Info("aitrader stopped cleanly")
}

// buildTrader wires the application services onto the adapters.
func buildTrader(cfg *config.Config, ledger *storage.SQLiteLedger, lock ports.SessionLock, forexFeed ports.MarketDataFeed) *trader.Trader {
	sigCfg := appsignal.Config{
		Thresholds: appsignal.Thresholds{
			CryptoEntry:   cfg.Signals.CryptoEntryThreshold,
			ForexEntry:    cfg.Signals.ForexEntryThreshold,
			CryptoDecline: cfg.Signals.CryptoDeclineThreshold,
			ForexDecline:  cfg.Signals.ForexDeclineThreshold,
		},
		StopLossPct:          cfg.Trading.StopLossPct,
		TakeProfitPct:        cfg.Trading.TakeProfitPct,
		ExitFloor:            appsignal.DefaultConfig().ExitFloor,
		TakeProfitConfidence: appsignal.DefaultConfig().TakeProfitConfidence,
		StopLossConfidence:   appsignal.DefaultConfig().StopLossConfidence,
	}
	confidence := appsignal.LinearConfidence{
		CryptoMultiplier: cfg.Signals.CryptoConfidenceMult,
		ForexMultiplier:  cfg.Signals.ForexConfidenceMult,
	}

	return trader.New(
		trader.Config{
			CryptoSymbols: cfg.Trading.CryptoSymbols,
			ForexPairs:    cfg.Trading.ForexPairs,
			LeaseTTL:      cfg.LeaseTTL(),
		},
		replay.New(ledger, cfg.Trading.InitialBalance, cfg.Lookback()),
		appsignal.NewEvaluator(sigCfg, confidence),
		risk.NewMonitor(cfg.Trading.StopLossPct, cfg.Trading.TakeProfitPct),
		appengine.New(ledger, appengine.Config{
			MaxPositionSize: cfg.Trading.MaxPositionSize,
			MinConfidence:   cfg.Trading.MinConfidence,
			MinTradeValue:   cfg.Trading.MinTradeValue,
		}),
		binance.NewFeed(),
		forexFeed,
		predictor.NewClient(cfg.Predictor.BaseURL, cfg.PredictorTimeout()),
		lock,
	)
}

func printStatus(ctx context.Context, t *trader.Trader, notifiers []ports.Notifier) error {
	valuation, positions, err := t.PortfolioStatus(ctx)
	if err != nil {
		return err
	}
	for _, n := range notifiers {
		if err := n.NotifyStatus(ctx, valuation, positions); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
