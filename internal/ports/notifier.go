package ports

import (
	"context"

	"github.com/alejandrodnm/aitrader/internal/domain"
)

// Notifier reports session outcomes to the operator.
type Notifier interface {
	NotifySession(ctx context.Context, result domain.SessionResult) error
	NotifyStatus(ctx context.Context, valuation domain.Valuation, positions []domain.PositionStatus) error
}
