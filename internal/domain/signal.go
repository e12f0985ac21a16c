package domain

import "time"

// Quote is the latest observed price for a symbol.
type Quote struct {
	Price     float64
	Timestamp time.Time
}

// MarketObservation is the snapshot handed to the prediction service.
// Forex quotes carry bid/ask; the price is always the tradable mid.
type MarketObservation struct {
	Symbol     string
	MarketType MarketType
	Price      float64
	Volume     float64
	Bid        float64
	Ask        float64
	Spread     float64
	Timestamp  time.Time
}

// Prediction is what the model service returns for one symbol.
type Prediction struct {
	Symbol         string
	MarketType     MarketType
	CurrentPrice   float64
	PredictedPrice float64
	Timestamp      time.Time
}

// SignalType is the normalized trading decision.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// Signal is the evaluator's output: a prediction normalized against current
// holdings. Transient — never persisted.
type Signal struct {
	Symbol             string
	MarketType         MarketType
	CurrentPrice       float64
	PredictedPrice     float64
	PredictedChangePct float64 // percent, e.g. 2.5 = +2.5%
	Confidence         float64 // [0, 1]
	Signal             SignalType
}
