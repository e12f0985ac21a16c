package signal

// evaluator.go — converts raw predictions into normalized trading signals.
//
// With no open position, the decision is a plain threshold on the predicted
// change. With an open position the evaluator also watches live P&L, in a
// strict precedence: model-predicted decline first, then take-profit, then
// stop-loss. The P&L exits force a high fixed confidence so they always clear
// the confidence gate regardless of model output.

import (
	"math"

	"github.com/alejandrodnm/aitrader/internal/domain"
)

// Thresholds are the per-asset-class decision bounds, as fractions
// (0.02 = 2%). All externally configurable for backtesting.
type Thresholds struct {
	CryptoEntry   float64 // predicted change to open a crypto lot
	ForexEntry    float64
	CryptoDecline float64 // predicted drop that exits an open crypto lot
	ForexDecline  float64
}

// DefaultThresholds mirror the trained model's working ranges: crypto needs a
// ±2% predicted move to act, forex ±0.1%; exits trigger on smaller declines.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CryptoEntry:   0.02,
		ForexEntry:    0.001,
		CryptoDecline: 0.01,
		ForexDecline:  0.0005,
	}
}

// Config tunes the evaluator.
type Config struct {
	Thresholds    Thresholds
	StopLossPct   float64 // fraction, e.g. 0.05
	TakeProfitPct float64 // fraction, e.g. 0.10

	// Forced confidences for exits. Model-driven exits are floored at
	// ExitFloor; P&L exits override confidence entirely so they cannot be
	// filtered out by a weak model.
	ExitFloor            float64
	TakeProfitConfidence float64
	StopLossConfidence   float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Thresholds:           DefaultThresholds(),
		StopLossPct:          0.05,
		TakeProfitPct:        0.10,
		ExitFloor:            0.7,
		TakeProfitConfidence: 0.9,
		StopLossConfidence:   0.95,
	}
}

// Evaluator turns predictions into signals given current holdings.
type Evaluator struct {
	cfg        Config
	confidence ConfidenceModel
}

// NewEvaluator creates an Evaluator. A nil model uses DefaultLinearConfidence.
func NewEvaluator(cfg Config, model ConfidenceModel) *Evaluator {
	if model == nil {
		model = DefaultLinearConfidence()
	}
	return &Evaluator{cfg: cfg, confidence: model}
}

// Evaluate produces the Signal for one prediction against the portfolio.
// It returns a DataQualityError for unusable prices instead of guessing.
func (e *Evaluator) Evaluate(pred domain.Prediction, pf *domain.Portfolio) (domain.Signal, error) {
	if pred.CurrentPrice <= 0 || math.IsNaN(pred.CurrentPrice) ||
		pred.PredictedPrice <= 0 || math.IsNaN(pred.PredictedPrice) {
		return domain.Signal{}, &domain.DataQualityError{
			Symbol: pred.Symbol, Field: "price", Reason: "non-positive or NaN",
		}
	}

	predictedChange := (pred.PredictedPrice - pred.CurrentPrice) / pred.CurrentPrice
	sig := domain.Signal{
		Symbol:             pred.Symbol,
		MarketType:         pred.MarketType,
		CurrentPrice:       pred.CurrentPrice,
		PredictedPrice:     pred.PredictedPrice,
		PredictedChangePct: predictedChange * 100,
		Confidence:         e.confidence.Confidence(pred.MarketType, predictedChange),
		Signal:             domain.SignalHold,
	}

	pos, held := pf.Positions[pred.Symbol]
	if !held {
		entry := e.cfg.Thresholds.CryptoEntry
		if pred.MarketType == domain.MarketForex {
			entry = e.cfg.Thresholds.ForexEntry
		}
		switch {
		case predictedChange > entry:
			sig.Signal = domain.SignalBuy
		case predictedChange < -entry:
			// Short-indicative. Not actionable — no short selling.
			sig.Signal = domain.SignalSell
		}
		return sig, nil
	}

	decline := e.cfg.Thresholds.CryptoDecline
	if pred.MarketType == domain.MarketForex {
		decline = e.cfg.Thresholds.ForexDecline
	}
	// Percent-precision comparison, same quantization as the recorded P&L.
	pnlPct := domain.RoundPercent(pos.UnrealizedPnLPct(pred.CurrentPrice)*100) / 100

	// Strict precedence: model decline, then take-profit, then stop-loss.
	switch {
	case predictedChange < -decline:
		sig.Signal = domain.SignalSell
		if sig.Confidence < e.cfg.ExitFloor {
			sig.Confidence = e.cfg.ExitFloor
		}
	case pnlPct >= e.cfg.TakeProfitPct:
		sig.Signal = domain.SignalSell
		sig.Confidence = e.cfg.TakeProfitConfidence
	case pnlPct <= -e.cfg.StopLossPct:
		sig.Signal = domain.SignalSell
		sig.Confidence = e.cfg.StopLossConfidence
	}
	return sig, nil
}
