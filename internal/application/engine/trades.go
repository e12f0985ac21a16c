package engine

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/aitrader/internal/domain"
)

// openPosition sizes a new lot proportionally to the risk budget and signal
// strength, appends the BUY record, then mutates the portfolio.
func (e *Engine) openPosition(ctx context.Context, pf *domain.Portfolio, sig domain.Signal) (domain.TradeRecord, error) {
	size := pf.CashBalance * e.cfg.MaxPositionSize * sig.Confidence
	quantity := domain.RoundQuantity(size / sig.CurrentPrice)
	value := domain.RoundMoney(quantity * sig.CurrentPrice)

	trade := domain.TradeRecord{
		TradeID:             e.newID(),
		Symbol:              sig.Symbol,
		MarketType:          sig.MarketType,
		Action:              domain.ActionBuy,
		Quantity:            quantity,
		Price:               sig.CurrentPrice,
		Value:               value,
		Timestamp:           e.now().UTC(),
		Confidence:          sig.Confidence,
		PredictedChangePct:  sig.PredictedChangePct,
		WalletBalanceBefore: pf.CashBalance,
		WalletBalanceAfter:  domain.RoundMoney(pf.CashBalance - value),
	}

	if err := e.ledger.Append(ctx, trade); err != nil {
		werr := &domain.WriteError{TradeID: trade.TradeID, Err: err}
		slog.Error("session: BUY append failed, trade aborted",
			"symbol", sig.Symbol, "trade_id", trade.TradeID, "err", err)
		return domain.TradeRecord{}, werr
	}

	pf.Positions[sig.Symbol] = domain.Position{
		Symbol:             sig.Symbol,
		MarketType:         sig.MarketType,
		Quantity:           quantity,
		EntryPrice:         sig.CurrentPrice,
		EntryTime:          trade.Timestamp,
		OriginatingTradeID: trade.TradeID,
	}
	pf.CashBalance = trade.WalletBalanceAfter
	return trade, nil
}

// closePosition closes the full lot for the symbol at the given price,
// appends the SELL record, then mutates the portfolio. No partial exits.
func (e *Engine) closePosition(
	ctx context.Context,
	pf *domain.Portfolio,
	symbol string,
	price, confidence, predictedChangePct float64,
	reason domain.ExitReason,
) (domain.TradeRecord, error) {
	pos := pf.Positions[symbol]
	value := domain.RoundMoney(pos.Quantity * price)

	trade := domain.TradeRecord{
		TradeID:             e.newID(),
		Symbol:              symbol,
		MarketType:          pos.MarketType,
		Action:              domain.ActionSell,
		Quantity:            pos.Quantity,
		Price:               price,
		Value:               value,
		Timestamp:           e.now().UTC(),
		Confidence:          confidence,
		PredictedChangePct:  predictedChangePct,
		EntryPrice:          pos.EntryPrice,
		PnL:                 domain.RoundMoney(pos.UnrealizedPnL(price)),
		PnLPercent:          domain.RoundPercent(pos.UnrealizedPnLPct(price) * 100),
		ExitReason:          reason,
		OriginalTradeID:     pos.OriginatingTradeID,
		WalletBalanceBefore: pf.CashBalance,
		WalletBalanceAfter:  domain.RoundMoney(pf.CashBalance + value),
	}

	if err := e.ledger.Append(ctx, trade); err != nil {
		werr := &domain.WriteError{TradeID: trade.TradeID, Err: err}
		slog.Error("session: SELL append failed, trade aborted",
			"symbol", symbol, "trade_id", trade.TradeID, "reason", reason, "err", err)
		return domain.TradeRecord{}, werr
	}

	delete(pf.Positions, symbol)
	pf.CashBalance = trade.WalletBalanceAfter
	return trade, nil
}
