package ports

import (
	"context"

	"github.com/alejandrodnm/aitrader/internal/domain"
)

// PredictionService produces a predicted price per instrument. The engine
// never trains or serves models; it only consumes predictions.
type PredictionService interface {
	Predict(ctx context.Context, obs domain.MarketObservation) (domain.Prediction, error)
}
