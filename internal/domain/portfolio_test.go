package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/aitrader/internal/domain"
)

func TestMarkToMarket_LivePrices(t *testing.T) {
	pf := domain.NewPortfolio(50)
	pf.CashBalance = 42
	pf.Positions["BTC"] = domain.Position{
		Symbol: "BTC", MarketType: domain.MarketCrypto,
		Quantity: 0.0002, EntryPrice: 40000,
	}

	v := pf.MarkToMarket(map[string]domain.Quote{
		"BTC": {Price: 44000, Timestamp: time.Now().UTC()},
	})

	assert.Equal(t, 42.0, v.CashBalance)
	assert.InDelta(t, 8.8, v.PositionsValue, 1e-9)
	assert.InDelta(t, 50.8, v.TotalValue, 1e-9)
	assert.InDelta(t, 0.8, v.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 0.8, pf.TotalPnL(map[string]domain.Quote{
		"BTC": {Price: 44000},
	}), 1e-9)
}

func TestMarkToMarket_MissingQuoteFallsBackToEntry(t *testing.T) {
	pf := domain.NewPortfolio(50)
	pf.CashBalance = 42
	pf.Positions["ADA"] = domain.Position{
		Symbol: "ADA", MarketType: domain.MarketCrypto,
		Quantity: 16, EntryPrice: 0.5,
	}

	// No quote at all — valued at cost, zero unrealized.
	v := pf.MarkToMarket(nil)
	assert.InDelta(t, 8.0, v.PositionsValue, 1e-9)
	assert.InDelta(t, 0.0, v.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 50.0, v.TotalValue, 1e-9)
}

func TestStatus_PerPositionPnL(t *testing.T) {
	pf := domain.NewPortfolio(100)
	pf.Positions["EURUSD"] = domain.Position{
		Symbol: "EURUSD", MarketType: domain.MarketForex,
		Quantity: 10, EntryPrice: 1.1000,
	}

	statuses := pf.Status(map[string]domain.Quote{
		"EURUSD": {Price: 1.2100},
	})
	require.Len(t, statuses, 1)
	assert.Equal(t, "EURUSD", statuses[0].Symbol)
	assert.InDelta(t, 1.1, statuses[0].UnrealizedPnL, 1e-9)
	assert.InDelta(t, 0.10, statuses[0].UnrealizedPnLPct, 1e-9)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 0.00017778, domain.RoundQuantity(8.0/45000))
	assert.Equal(t, 10.0, domain.RoundPercent(9.999999999999998))
	assert.Equal(t, 4.44, domain.RoundPercent(4.4444))
}
