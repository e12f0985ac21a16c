package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/aitrader/internal/domain"
)

// LedgerStore is the durable append-only trade ledger.
type LedgerStore interface {
	// Append persists one immutable trade record.
	Append(ctx context.Context, trade domain.TradeRecord) error

	// QueryRange returns all records with timestamps in [from, to].
	// Order is not guaranteed; the replayer sorts.
	QueryRange(ctx context.Context, from, to time.Time) ([]domain.TradeRecord, error)

	// Close releases the underlying connection cleanly.
	Close() error
}
