package engine

// engine.go — the session orchestrator.
//
// One session applies decisions in strict phase order, committing each trade
// before looking at the next so later phases observe updated balances:
//
//   1. model-driven exits (SELL signals on held symbols, confidence-gated)
//   2. risk-driven exits (stop-loss / take-profit, confidence-independent)
//   3. new entries (BUY signals on free symbols, sized by confidence)
//
// The ledger append is the commit point of a trade: the in-memory portfolio
// is only mutated after the record is durably written, so a failed append
// aborts that one trade and the session moves on.

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/aitrader/internal/application/risk"
	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

// DefaultMinTradeValue is the smallest position the engine will open.
const DefaultMinTradeValue = 1.0

// Config holds the session risk parameters. All externally configurable so
// backtests can sweep risk profiles.
type Config struct {
	MaxPositionSize float64 // fraction of the wallet per trade, e.g. 0.2
	MinConfidence   float64 // gate for model-driven trades, e.g. 0.6
	MinTradeValue   float64 // dollars; below this no entry is attempted
}

// Engine executes trading sessions against a ledger store.
type Engine struct {
	ledger ports.LedgerStore
	cfg    Config

	now   func() time.Time
	newID func() string
}

// New creates an Engine.
func New(ledger ports.LedgerStore, cfg Config) *Engine {
	if cfg.MinTradeValue <= 0 {
		cfg.MinTradeValue = DefaultMinTradeValue
	}
	return &Engine{
		ledger: ledger,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// RunSession applies the three phases to the portfolio and returns the
// structured result. Zero trades executed is a valid, non-error outcome.
// Symbols are processed sequentially: position sizing in phase 3 depends on
// the capital freed by phases 1 and 2.
func (e *Engine) RunSession(
	ctx context.Context,
	pf *domain.Portfolio,
	signals []domain.Signal,
	riskExits []risk.Exit,
	prices map[string]domain.Quote,
) *domain.SessionResult {
	result := &domain.SessionResult{}

	// Phase 1: the model says get out, and is confident enough.
	for _, sig := range signals {
		if sig.Signal != domain.SignalSell || !pf.Has(sig.Symbol) {
			continue
		}
		if sig.Confidence < e.cfg.MinConfidence {
			continue
		}
		trade, err := e.closePosition(ctx, pf, sig.Symbol, sig.CurrentPrice,
			sig.Confidence, sig.PredictedChangePct, domain.ExitModelSignal)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}
		slog.Info("session: model-driven exit", "phase", 1,
			"symbol", sig.Symbol, "confidence", sig.Confidence, "trade_id", trade.TradeID)
		result.Trades = append(result.Trades, trade)
	}

	// Phase 2: risk thresholds on whatever is still open.
	for _, exit := range riskExits {
		if !pf.Has(exit.Symbol) {
			continue // already closed by the model in phase 1
		}
		trade, err := e.closePosition(ctx, pf, exit.Symbol, exit.Price, 0, 0, exit.Reason)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}
		slog.Info("session: risk-driven exit", "phase", 2,
			"symbol", exit.Symbol, "reason", exit.Reason, "trade_id", trade.TradeID)
		result.Trades = append(result.Trades, trade)
	}

	// Phase 3: new entries with whatever capital is now free.
	opened := make(map[string]bool)
	for _, sig := range signals {
		if sig.Signal != domain.SignalBuy || pf.Has(sig.Symbol) || opened[sig.Symbol] {
			continue
		}
		if sig.Confidence < e.cfg.MinConfidence {
			continue
		}
		budget := pf.CashBalance * e.cfg.MaxPositionSize
		if budget < e.cfg.MinTradeValue {
			slog.Debug("session: skipping entry, below minimum trade value",
				"symbol", sig.Symbol, "budget", budget)
			continue
		}
		trade, err := e.openPosition(ctx, pf, sig)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}
		opened[sig.Symbol] = true
		slog.Info("session: new entry", "phase", 3,
			"symbol", sig.Symbol, "value", trade.Value, "confidence", sig.Confidence,
			"trade_id", trade.TradeID)
		result.Trades = append(result.Trades, trade)
	}

	v := pf.MarkToMarket(prices)
	result.TradesExecuted = len(result.Trades)
	result.WalletBalance = v.CashBalance
	result.PortfolioValue = v.TotalValue
	result.TotalPnL = v.TotalValue - pf.InitialBalance
	return result
}
