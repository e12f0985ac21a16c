package ports

import (
	"context"

	"github.com/alejandrodnm/aitrader/internal/domain"
)

// MarketDataFeed supplies the latest observation per instrument. The engine
// treats it as a read-only snapshot source.
type MarketDataFeed interface {
	// LatestObservation returns the current snapshot for one symbol.
	// ok is false when the feed has no quote for it; that is not an error.
	LatestObservation(ctx context.Context, symbol string) (obs domain.MarketObservation, ok bool, err error)
}
