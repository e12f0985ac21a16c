package domain

import "time"

// Position is an open paper-trading lot. At most one Position per symbol can
// exist at any time — there is no averaging-in and no shorting.
type Position struct {
	Symbol             string
	MarketType         MarketType
	Quantity           float64 // always > 0
	EntryPrice         float64 // always > 0
	EntryTime          time.Time
	OriginatingTradeID string // the BUY record that opened this lot
}

// UnrealizedPnL is the paper profit at the given price.
func (p Position) UnrealizedPnL(currentPrice float64) float64 {
	return (currentPrice - p.EntryPrice) * p.Quantity
}

// UnrealizedPnLPct is the fractional move from entry (0.10 = +10%).
func (p Position) UnrealizedPnLPct(currentPrice float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	return (currentPrice - p.EntryPrice) / p.EntryPrice
}

// CostBasis is the capital locked in this lot at entry.
func (p Position) CostBasis() float64 {
	return p.EntryPrice * p.Quantity
}
