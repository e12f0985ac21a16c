package trader

// trader.go — one full trading cycle, collaborators included.
//
// A cycle is: take the session lease, rebuild the portfolio from the ledger,
// snapshot the market, ask the model for predictions, evaluate signals, run
// the three-phase session, release. Collaborator failures degrade to "no
// trading this cycle" — only ledger corruption escalates.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/aitrader/internal/application/engine"
	"github.com/alejandrodnm/aitrader/internal/application/replay"
	"github.com/alejandrodnm/aitrader/internal/application/risk"
	"github.com/alejandrodnm/aitrader/internal/application/signal"
	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

// Config holds the cycle-level settings.
type Config struct {
	CryptoSymbols []string
	ForexPairs    []string
	LeaseTTL      time.Duration
	CallTimeout   time.Duration // per collaborator call
}

// Trader orchestrates full trading cycles.
type Trader struct {
	cfg       Config
	replayer  *replay.Replayer
	evaluator *signal.Evaluator
	monitor   *risk.Monitor
	engine    *engine.Engine

	cryptoFeed ports.MarketDataFeed
	forexFeed  ports.MarketDataFeed
	predictor  ports.PredictionService
	lock       ports.SessionLock
}

// New wires a Trader from its collaborators.
func New(
	cfg Config,
	replayer *replay.Replayer,
	evaluator *signal.Evaluator,
	monitor *risk.Monitor,
	eng *engine.Engine,
	cryptoFeed, forexFeed ports.MarketDataFeed,
	predictor ports.PredictionService,
	lock ports.SessionLock,
) *Trader {
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 2 * time.Minute
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	return &Trader{
		cfg:        cfg,
		replayer:   replayer,
		evaluator:  evaluator,
		monitor:    monitor,
		engine:     eng,
		cryptoFeed: cryptoFeed,
		forexFeed:  forexFeed,
		predictor:  predictor,
		lock:       lock,
	}
}

// RunCycle executes one trading session. It returns domain.ErrLeaseHeld when
// another session is active (callers skip the cycle), and an error only for
// ledger corruption — every other failure degrades inside the cycle.
func (t *Trader) RunCycle(ctx context.Context) (*domain.SessionResult, error) {
	release, err := t.lock.Acquire(ctx, t.cfg.LeaseTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLeaseHeld) {
			return nil, domain.ErrLeaseHeld
		}
		return nil, fmt.Errorf("trader.RunCycle: acquire lease: %w", err)
	}
	defer release()

	pf, err := t.replayer.Load(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("trader.RunCycle: %w", err)
	}

	observations, prices := t.snapshotMarket(ctx)
	if len(observations) == 0 {
		slog.Warn("trader: no market data this cycle, skipping trading")
		v := pf.MarkToMarket(nil)
		return &domain.SessionResult{
			WalletBalance:  v.CashBalance,
			PortfolioValue: v.TotalValue,
			TotalPnL:       v.TotalValue - pf.InitialBalance,
			Warnings:       []string{"no market data available"},
		}, nil
	}

	signals := t.collectSignals(ctx, observations, pf)
	riskExits := t.monitor.Check(pf, prices)

	result := t.engine.RunSession(ctx, pf, signals, riskExits, prices)
	slog.Info("trader: session completed",
		"trades", result.TradesExecuted,
		"balance", result.WalletBalance,
		"value", result.PortfolioValue,
		"pnl", result.TotalPnL,
	)
	return result, nil
}

// PortfolioStatus replays the ledger and values the portfolio at live prices,
// falling back to entry prices where quotes are missing.
func (t *Trader) PortfolioStatus(ctx context.Context) (domain.Valuation, []domain.PositionStatus, error) {
	pf, err := t.replayer.Load(ctx, time.Now().UTC())
	if err != nil {
		return domain.Valuation{}, nil, fmt.Errorf("trader.PortfolioStatus: %w", err)
	}
	_, prices := t.snapshotMarket(ctx)
	return pf.MarkToMarket(prices), pf.Status(prices), nil
}

// snapshotMarket fetches the latest observation for every configured symbol.
// Feed errors cost only that symbol.
func (t *Trader) snapshotMarket(ctx context.Context) ([]domain.MarketObservation, map[string]domain.Quote) {
	var observations []domain.MarketObservation
	prices := make(map[string]domain.Quote)

	fetch := func(feed ports.MarketDataFeed, symbols []string, mt domain.MarketType) {
		if feed == nil {
			return
		}
		for _, symbol := range symbols {
			callCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
			obs, ok, err := feed.LatestObservation(callCtx, symbol)
			cancel()
			if err != nil {
				slog.Warn("trader: market data fetch failed",
					"symbol", symbol, "market_type", mt, "err", err)
				continue
			}
			if !ok {
				continue
			}
			observations = append(observations, obs)
			prices[symbol] = domain.Quote{Price: obs.Price, Timestamp: obs.Timestamp}
		}
	}

	fetch(t.cryptoFeed, t.cfg.CryptoSymbols, domain.MarketCrypto)
	fetch(t.forexFeed, t.cfg.ForexPairs, domain.MarketForex)
	return observations, prices
}

// collectSignals asks the model for a prediction per observation and
// normalizes it against current holdings. A failed prediction or an unusable
// price costs only that symbol.
func (t *Trader) collectSignals(ctx context.Context, observations []domain.MarketObservation, pf *domain.Portfolio) []domain.Signal {
	var signals []domain.Signal
	for _, obs := range observations {
		callCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
		pred, err := t.predictor.Predict(callCtx, obs)
		cancel()
		if err != nil {
			slog.Warn("trader: prediction failed",
				"symbol", obs.Symbol, "err", err)
			continue
		}
		sig, err := t.evaluator.Evaluate(pred, pf)
		if err != nil {
			slog.Warn("trader: unusable prediction skipped",
				"symbol", obs.Symbol, "err", err)
			continue
		}
		signals = append(signals, sig)
	}
	return signals
}
