package signal

import "github.com/alejandrodnm/aitrader/internal/domain"

// ConfidenceModel maps a predicted fractional change to a confidence in
// [0, 1]. The formula is a heuristic with no stated calibration, so it sits
// behind an interface — sizing and gating consume whatever it returns.
type ConfidenceModel interface {
	Confidence(marketType domain.MarketType, predictedChange float64) float64
}

// LinearConfidence scales the magnitude of the predicted change by a
// per-asset-class multiplier, capped at 1.0. Crypto moves are larger, so it
// uses a smaller multiplier than forex to reach the same confidence for a
// smaller percentage move.
type LinearConfidence struct {
	CryptoMultiplier float64
	ForexMultiplier  float64
}

// DefaultLinearConfidence matches the production model's calibration.
func DefaultLinearConfidence() LinearConfidence {
	return LinearConfidence{CryptoMultiplier: 10, ForexMultiplier: 20}
}

func (l LinearConfidence) Confidence(marketType domain.MarketType, predictedChange float64) float64 {
	mult := l.CryptoMultiplier
	if marketType == domain.MarketForex {
		mult = l.ForexMultiplier
	}
	c := predictedChange * mult
	if c < 0 {
		c = -c
	}
	if c > 1 {
		return 1
	}
	return c
}
