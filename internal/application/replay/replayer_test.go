package replay_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/aitrader/internal/application/replay"
	"github.com/alejandrodnm/aitrader/internal/domain"
)

func buy(id, symbol string, qty, price float64, ts time.Time) domain.TradeRecord {
	return domain.TradeRecord{
		TradeID:    id,
		Symbol:     symbol,
		MarketType: domain.MarketCrypto,
		Action:     domain.ActionBuy,
		Quantity:   qty,
		Price:      price,
		Value:      qty * price,
		Timestamp:  ts,
	}
}

func sell(id, symbol string, qty, price float64, ts time.Time) domain.TradeRecord {
	return domain.TradeRecord{
		TradeID:    id,
		Symbol:     symbol,
		MarketType: domain.MarketCrypto,
		Action:     domain.ActionSell,
		Quantity:   qty,
		Price:      price,
		Value:      qty * price,
		Timestamp:  ts,
	}
}

func TestReplay_BalanceConservation(t *testing.T) {
	r := replay.New(nil, 100, 0)
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	pf, err := r.Replay([]domain.TradeRecord{
		buy("t1", "BTC", 0.001, 40000, t0),            // -40
		sell("t2", "BTC", 0.001, 45000, t0.Add(time.Hour)), // +45
		buy("t3", "ETH", 0.01, 2000, t0.Add(2*time.Hour)),  // -20
	})
	require.NoError(t, err)

	// 100 − 40 + 45 − 20
	assert.InDelta(t, 85.0, pf.CashBalance, 1e-9)
	require.Len(t, pf.Positions, 1)
	assert.Equal(t, 0.01, pf.Positions["ETH"].Quantity)
	assert.Equal(t, 2000.0, pf.Positions["ETH"].EntryPrice)
	assert.Equal(t, "t3", pf.Positions["ETH"].OriginatingTradeID)
}

func TestReplay_Deterministic(t *testing.T) {
	r := replay.New(nil, 100, 0)
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	// Unordered input, colliding timestamps: sorting is by timestamp with a
	// stable tie-break on trade id.
	trades := []domain.TradeRecord{
		sell("b-sell", "BTC", 0.001, 45000, t0.Add(time.Hour)),
		buy("a-buy", "BTC", 0.001, 40000, t0),
		buy("c-buy", "SOL", 1, 20, t0.Add(time.Hour)),
	}

	first, err := r.Replay(trades)
	require.NoError(t, err)
	second, err := r.Replay(trades)
	require.NoError(t, err)

	assert.Equal(t, first.CashBalance, second.CashBalance)
	assert.Equal(t, first.Positions, second.Positions)
}

func TestReplay_TieBreakOnTradeID(t *testing.T) {
	r := replay.New(nil, 100, 0)
	ts := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	// Same timestamp: the SELL ("a-…") must apply before the re-entry BUY
	// ("b-…") for the ledger to make sense.
	pf, err := r.Replay([]domain.TradeRecord{
		buy("b-rebuy", "BTC", 0.002, 41000, ts),
		sell("a-sell", "BTC", 0.001, 42000, ts),
		buy("0-open", "BTC", 0.001, 40000, ts.Add(-time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.002, pf.Positions["BTC"].Quantity)
}

func TestReplay_DoubleOpenViolation(t *testing.T) {
	r := replay.New(nil, 100, 0)
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	_, err := r.Replay([]domain.TradeRecord{
		buy("t1", "BTC", 0.001, 40000, t0),
		buy("t2", "BTC", 0.001, 41000, t0.Add(time.Hour)),
	})
	var iv *domain.InvariantViolationError
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, "BTC", iv.Symbol)
	assert.Equal(t, "t2", iv.TradeID)
}

func TestReplay_SellWithoutOpenViolation(t *testing.T) {
	r := replay.New(nil, 100, 0)

	_, err := r.Replay([]domain.TradeRecord{
		sell("t1", "SOL", 1, 20, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)),
	})
	var iv *domain.InvariantViolationError
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, "SOL", iv.Symbol)
}

func TestReplay_CorruptRecordSkipped(t *testing.T) {
	r := replay.New(nil, 100, 0)
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	corrupt := buy("bad", "ETH", 0, 2000, t0) // zero quantity
	corrupt.Value = 0

	pf, err := r.Replay([]domain.TradeRecord{
		corrupt,
		buy("good", "BTC", 0.001, 40000, t0.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.False(t, pf.Has("ETH"))
	assert.True(t, pf.Has("BTC"))
	assert.InDelta(t, 60.0, pf.CashBalance, 1e-9)
}

func TestReplay_UnknownActionSkipped(t *testing.T) {
	r := replay.New(nil, 100, 0)
	bad := buy("t1", "BTC", 0.001, 40000, time.Now().UTC())
	bad.Action = "SHORT"

	pf, err := r.Replay([]domain.TradeRecord{bad})
	require.NoError(t, err)
	assert.Empty(t, pf.Positions)
	assert.Equal(t, 100.0, pf.CashBalance)
}

// failingStore always errors on reads.
type failingStore struct{}

func (failingStore) Append(context.Context, domain.TradeRecord) error { return nil }
func (failingStore) QueryRange(context.Context, time.Time, time.Time) ([]domain.TradeRecord, error) {
	return nil, errors.New("store unavailable")
}
func (failingStore) Close() error { return nil }

func TestLoad_StoreFailureFallsBackToInitialBalance(t *testing.T) {
	r := replay.New(failingStore{}, 50, 0)

	pf, err := r.Load(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 50.0, pf.CashBalance)
	assert.Empty(t, pf.Positions)
}
