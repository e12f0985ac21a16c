package binance

// feed.go — crypto quotes from Binance spot. Symbols are configured bare
// ("BTC", "ETH"); the feed quotes them against USDT.

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

// Feed implements ports.MarketDataFeed for crypto symbols.
type Feed struct {
	client *binance.Client
	quote  string
}

// NewFeed creates a public-data Binance feed. No API keys are needed for
// ticker endpoints.
func NewFeed() *Feed {
	return &Feed{
		client: binance.NewClient("", ""),
		quote:  "USDT",
	}
}

// LatestObservation returns the current 24h ticker snapshot for the symbol.
func (f *Feed) LatestObservation(ctx context.Context, symbol string) (domain.MarketObservation, bool, error) {
	stats, err := f.client.NewListPriceChangeStatsService().
		Symbol(symbol + f.quote).
		Do(ctx)
	if err != nil {
		return domain.MarketObservation{}, false,
			fmt.Errorf("binance.LatestObservation: %s: %w: %w", symbol, domain.ErrCollaboratorUnavailable, err)
	}
	if len(stats) == 0 {
		return domain.MarketObservation{}, false, nil
	}

	st := stats[0]
	price := parseFloat(st.LastPrice)
	if price <= 0 {
		return domain.MarketObservation{}, false, nil
	}
	return domain.MarketObservation{
		Symbol:     symbol,
		MarketType: domain.MarketCrypto,
		Price:      price,
		Volume:     parseFloat(st.QuoteVolume),
		Bid:        parseFloat(st.BidPrice),
		Ask:        parseFloat(st.AskPrice),
		Timestamp:  time.UnixMilli(st.CloseTime).UTC(),
	}, true, nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// Compile-time interface check.
var _ ports.MarketDataFeed = (*Feed)(nil)
