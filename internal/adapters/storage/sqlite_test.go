package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/aitrader/internal/adapters/storage"
	"github.com/alejandrodnm/aitrader/internal/domain"
)

func makeBuy(id string, ts time.Time) domain.TradeRecord {
	return domain.TradeRecord{
		TradeID:             id,
		Symbol:              "BTC",
		MarketType:          domain.MarketCrypto,
		Action:              domain.ActionBuy,
		Quantity:            0.0001778,
		Price:               45000,
		Value:               8.001,
		Timestamp:           ts,
		Confidence:          0.8,
		PredictedChangePct:  3.2,
		WalletBalanceBefore: 50,
		WalletBalanceAfter:  41.999,
	}
}

func TestLedger_AppendAndQueryRoundTrip(t *testing.T) {
	ledger, err := storage.NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	defer ledger.Close()

	ctx := context.Background()
	ts := time.Date(2026, 8, 30, 9, 15, 0, 123456789, time.UTC)

	buyRec := makeBuy("t-buy", ts)
	require.NoError(t, ledger.Append(ctx, buyRec))

	sellRec := domain.TradeRecord{
		TradeID:             "t-sell",
		Symbol:              "BTC",
		MarketType:          domain.MarketCrypto,
		Action:              domain.ActionSell,
		Quantity:            0.0001778,
		Price:               47000,
		Value:               8.3566,
		Timestamp:           ts.Add(time.Hour),
		Confidence:          0.7,
		PredictedChangePct:  -1.5,
		EntryPrice:          45000,
		PnL:                 0.3556,
		PnLPercent:          4.44,
		ExitReason:          domain.ExitModelSignal,
		OriginalTradeID:     "t-buy",
		WalletBalanceBefore: 41.999,
		WalletBalanceAfter:  50.3556,
	}
	require.NoError(t, ledger.Append(ctx, sellRec))

	trades, err := ledger.QueryRange(ctx, ts.Add(-time.Minute), ts.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	byID := map[string]domain.TradeRecord{}
	for _, tr := range trades {
		byID[tr.TradeID] = tr
	}

	gotBuy := byID["t-buy"]
	assert.Equal(t, buyRec.Symbol, gotBuy.Symbol)
	assert.Equal(t, buyRec.Action, gotBuy.Action)
	assert.Equal(t, buyRec.Quantity, gotBuy.Quantity)
	assert.True(t, gotBuy.Timestamp.Equal(ts), "sub-second precision must survive")
	assert.Empty(t, string(gotBuy.ExitReason))
	assert.Zero(t, gotBuy.EntryPrice)

	gotSell := byID["t-sell"]
	assert.Equal(t, domain.ExitModelSignal, gotSell.ExitReason)
	assert.Equal(t, "t-buy", gotSell.OriginalTradeID)
	assert.Equal(t, 45000.0, gotSell.EntryPrice)
	assert.Equal(t, 4.44, gotSell.PnLPercent)
}

func TestLedger_QueryRangeExcludesOutside(t *testing.T) {
	ledger, err := storage.NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	defer ledger.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Append(ctx, makeBuy("old", base.AddDate(0, 0, -40))))
	sellOld := makeBuy("in-window", base)
	require.NoError(t, ledger.Append(ctx, sellOld))

	trades, err := ledger.QueryRange(ctx, base.AddDate(0, 0, -30), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "in-window", trades[0].TradeID)
}

func TestLedger_DuplicateTradeIDRejected(t *testing.T) {
	ledger, err := storage.NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	defer ledger.Close()

	ctx := context.Background()
	ts := time.Now().UTC()

	require.NoError(t, ledger.Append(ctx, makeBuy("dup", ts)))
	err = ledger.Append(ctx, makeBuy("dup", ts.Add(time.Second)))
	assert.Error(t, err, "records are immutable, same id must not overwrite")
}

func TestLock_AcquireAndRelease(t *testing.T) {
	ledger, err := storage.NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	defer ledger.Close()

	lock := storage.NewSQLiteLock(ledger)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)

	// Second acquire while held.
	_, err = lock.Acquire(ctx, time.Minute)
	require.True(t, errors.Is(err, domain.ErrLeaseHeld))

	release()
	release() // safe to call twice

	release2, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	release2()
}

func TestLock_ExpiredLeaseIsStolen(t *testing.T) {
	ledger, err := storage.NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	defer ledger.Close()

	lock := storage.NewSQLiteLock(ledger)
	ctx := context.Background()

	// Take the lease with a TTL that is already over, never release.
	_, err = lock.Acquire(ctx, -time.Second)
	require.NoError(t, err)

	release, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	release()
}
