package risk_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/aitrader/internal/application/risk"
	"github.com/alejandrodnm/aitrader/internal/domain"
)

func portfolioWith(positions ...domain.Position) *domain.Portfolio {
	pf := domain.NewPortfolio(100)
	for _, p := range positions {
		pf.Positions[p.Symbol] = p
	}
	return pf
}

func quote(price float64) domain.Quote {
	return domain.Quote{Price: price, Timestamp: time.Now().UTC()}
}

func TestCheck_TakeProfit(t *testing.T) {
	m := risk.NewMonitor(0.05, 0.10)
	pf := portfolioWith(domain.Position{
		Symbol: "EURUSD", MarketType: domain.MarketForex,
		Quantity: 10, EntryPrice: 1.1000,
	})

	// +10% exactly reaches the take-profit bound.
	exits := m.Check(pf, map[string]domain.Quote{"EURUSD": quote(1.2100)})
	require.Len(t, exits, 1)
	assert.Equal(t, "EURUSD", exits[0].Symbol)
	assert.Equal(t, domain.ExitTakeProfit, exits[0].Reason)
	assert.Equal(t, 1.2100, exits[0].Price)
}

func TestCheck_StopLoss(t *testing.T) {
	m := risk.NewMonitor(0.05, 0.10)
	pf := portfolioWith(domain.Position{
		Symbol: "BTC", MarketType: domain.MarketCrypto,
		Quantity: 0.001, EntryPrice: 40000,
	})

	exits := m.Check(pf, map[string]domain.Quote{"BTC": quote(37000)}) // −7.5%
	require.Len(t, exits, 1)
	assert.Equal(t, domain.ExitStopLoss, exits[0].Reason)
}

func TestCheck_InsideBoundsNoExit(t *testing.T) {
	m := risk.NewMonitor(0.05, 0.10)
	pf := portfolioWith(domain.Position{
		Symbol: "BTC", MarketType: domain.MarketCrypto,
		Quantity: 0.001, EntryPrice: 40000,
	})

	exits := m.Check(pf, map[string]domain.Quote{"BTC": quote(41000)}) // +2.5%
	assert.Empty(t, exits)
}

func TestCheck_MissingQuoteIsLeftAlone(t *testing.T) {
	m := risk.NewMonitor(0.05, 0.10)
	pf := portfolioWith(domain.Position{
		Symbol: "ADA", MarketType: domain.MarketCrypto,
		Quantity: 100, EntryPrice: 0.5,
	})

	exits := m.Check(pf, map[string]domain.Quote{})
	assert.Empty(t, exits)
}

func TestCheck_SortedBySymbol(t *testing.T) {
	m := risk.NewMonitor(0.05, 0.10)
	pf := portfolioWith(
		domain.Position{Symbol: "SOL", MarketType: domain.MarketCrypto, Quantity: 1, EntryPrice: 20},
		domain.Position{Symbol: "BTC", MarketType: domain.MarketCrypto, Quantity: 0.001, EntryPrice: 40000},
	)

	exits := m.Check(pf, map[string]domain.Quote{
		"SOL": quote(17), // −15%
		"BTC": quote(36000), // −10%
	})
	require.Len(t, exits, 2)
	assert.Equal(t, "BTC", exits[0].Symbol)
	assert.Equal(t, "SOL", exits[1].Symbol)
}
