package replay

// replayer.go — portfolio reconstruction by ledger replay.
//
// The portfolio is never persisted directly: every session rebuilds it by
// folding the trade records of the lookback window, oldest first. A BUY opens
// a lot and debits cash by the recorded value; a SELL closes the lot and
// credits it. Anything the fold cannot explain is either a corrupt record
// (skipped, logged) or a broken ledger (hard failure).

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

// DefaultLookback is the trailing window replayed when none is configured.
const DefaultLookback = 30 * 24 * time.Hour

// Replayer rebuilds portfolio state from the ledger.
type Replayer struct {
	store          ports.LedgerStore
	initialBalance float64
	lookback       time.Duration
}

// New creates a Replayer over the given store.
func New(store ports.LedgerStore, initialBalance float64, lookback time.Duration) *Replayer {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Replayer{store: store, initialBalance: initialBalance, lookback: lookback}
}

// Load queries the lookback window ending at now and replays it. If the store
// read fails, it falls back to a fresh portfolio at the initial balance so
// trading can resume cautiously on the next cycle; only a ledger invariant
// violation is returned as an error.
func (r *Replayer) Load(ctx context.Context, now time.Time) (*domain.Portfolio, error) {
	trades, err := r.store.QueryRange(ctx, now.Add(-r.lookback), now)
	if err != nil {
		slog.Warn("replay: ledger read failed, starting from initial balance",
			"err", err, "initial_balance", r.initialBalance)
		return domain.NewPortfolio(r.initialBalance), nil
	}
	return r.Replay(trades)
}

// Replay folds the given records into a Portfolio. Records are sorted by
// timestamp ascending with a stable tie-break on trade id, so replay is
// deterministic even when timestamps collide.
func (r *Replayer) Replay(trades []domain.TradeRecord) (*domain.Portfolio, error) {
	sorted := make([]domain.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].TradeID < sorted[j].TradeID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	pf := domain.NewPortfolio(r.initialBalance)
	for _, t := range sorted {
		if err := r.apply(pf, t); err != nil {
			var dq *domain.DataQualityError
			if errors.As(err, &dq) {
				// One corrupt record must not block reconstruction.
				slog.Warn("replay: skipping corrupt record",
					"trade_id", dq.TradeID, "symbol", dq.Symbol,
					"field", dq.Field, "reason", dq.Reason)
				continue
			}
			return nil, err
		}
	}
	return pf, nil
}

// apply folds one record into the portfolio.
func (r *Replayer) apply(pf *domain.Portfolio, t domain.TradeRecord) error {
	if err := validate(t); err != nil {
		return err
	}

	switch t.Action {
	case domain.ActionBuy:
		if pf.Has(t.Symbol) {
			return &domain.InvariantViolationError{
				TradeID: t.TradeID,
				Symbol:  t.Symbol,
				Reason:  "BUY while a position is already open",
			}
		}
		pf.Positions[t.Symbol] = domain.Position{
			Symbol:             t.Symbol,
			MarketType:         t.MarketType,
			Quantity:           t.Quantity,
			EntryPrice:         t.Price,
			EntryTime:          t.Timestamp,
			OriginatingTradeID: t.TradeID,
		}
		pf.CashBalance = domain.RoundMoney(pf.CashBalance - t.Value)

	case domain.ActionSell:
		if !pf.Has(t.Symbol) {
			return &domain.InvariantViolationError{
				TradeID: t.TradeID,
				Symbol:  t.Symbol,
				Reason:  "SELL with no open position",
			}
		}
		delete(pf.Positions, t.Symbol)
		pf.CashBalance = domain.RoundMoney(pf.CashBalance + t.Value)
	}
	return nil
}

// validate rejects records whose numeric fields would silently corrupt the
// fold. Missing numbers must surface, not coerce to zero.
func validate(t domain.TradeRecord) error {
	switch t.Action {
	case domain.ActionBuy, domain.ActionSell:
	default:
		return &domain.DataQualityError{TradeID: t.TradeID, Symbol: t.Symbol,
			Field: "action", Reason: "unknown action " + string(t.Action)}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"quantity", t.Quantity},
		{"price", t.Price},
		{"value", t.Value},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &domain.DataQualityError{TradeID: t.TradeID, Symbol: t.Symbol,
				Field: f.name, Reason: "not a finite number"}
		}
		if f.value <= 0 {
			return &domain.DataQualityError{TradeID: t.TradeID, Symbol: t.Symbol,
				Field: f.name, Reason: "must be positive"}
		}
	}
	if t.Symbol == "" {
		return &domain.DataQualityError{TradeID: t.TradeID,
			Field: "symbol", Reason: "empty"}
	}
	return nil
}
