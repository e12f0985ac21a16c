package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketType separates the two asset classes the trader knows about.
// Entry thresholds and confidence multipliers differ per class.
type MarketType string

const (
	MarketCrypto MarketType = "crypto"
	MarketForex  MarketType = "forex"
)

// Action is the side of a trade record.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitModelSignal ExitReason = "MODEL_SIGNAL"
	ExitStopLoss    ExitReason = "STOP_LOSS"
	ExitTakeProfit  ExitReason = "TAKE_PROFIT"
)

// TradeRecord is one immutable entry in the trade ledger. Records are only
// ever appended, never mutated or deleted — the ledger is the single source
// of truth for portfolio state (see replay).
type TradeRecord struct {
	TradeID    string
	Symbol     string
	MarketType MarketType
	Action     Action
	Quantity   float64
	Price      float64
	Value      float64 // quantity × price
	Timestamp  time.Time

	// Model context at execution time.
	Confidence         float64
	PredictedChangePct float64

	// SELL-only fields. Zero/empty on BUY records.
	EntryPrice      float64
	PnL             float64
	PnLPercent      float64
	ExitReason      ExitReason
	OriginalTradeID string // the matching BUY

	// Balance snapshots for audit.
	WalletBalanceBefore float64
	WalletBalanceAfter  float64
}

// Quantization of recorded fields: half-up, fixed precision, so replaying the
// same ledger always reproduces the same balances.
const (
	quantityPlaces = 8
	moneyPlaces    = 8
	percentPlaces  = 2
)

// RoundQuantity rounds an asset quantity to ledger precision.
func RoundQuantity(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(quantityPlaces).Float64()
	return f
}

// RoundMoney rounds a monetary amount to ledger precision.
func RoundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(moneyPlaces).Float64()
	return f
}

// RoundPercent rounds a percentage to two decimals, the way it is reported.
func RoundPercent(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(percentPlaces).Float64()
	return f
}
