package domain

// Portfolio is the in-memory aggregate derived from ledger replay. It is
// rebuilt at the start of every session and discarded at the end; only trade
// records persist. All mutation happens through the execution engine, which
// receives the Portfolio explicitly — nothing reads it through shared state.
type Portfolio struct {
	CashBalance    float64
	InitialBalance float64
	Positions      map[string]Position // symbol → open lot
}

// NewPortfolio returns an empty portfolio at the configured initial balance.
func NewPortfolio(initialBalance float64) *Portfolio {
	return &Portfolio{
		CashBalance:    initialBalance,
		InitialBalance: initialBalance,
		Positions:      make(map[string]Position),
	}
}

// Has reports whether a lot is open for the symbol.
func (p *Portfolio) Has(symbol string) bool {
	_, ok := p.Positions[symbol]
	return ok
}

// Valuation is a read-only mark-to-market snapshot.
type Valuation struct {
	CashBalance    float64
	PositionsValue float64
	TotalValue     float64
	UnrealizedPnL  float64
}

// MarkToMarket values open lots at current market prices. A symbol missing
// from prices falls back to its entry price — a stale quote never fails a
// valuation.
func (p *Portfolio) MarkToMarket(prices map[string]Quote) Valuation {
	v := Valuation{CashBalance: p.CashBalance}
	for symbol, pos := range p.Positions {
		price := pos.EntryPrice
		if q, ok := prices[symbol]; ok && q.Price > 0 {
			price = q.Price
		}
		v.PositionsValue += pos.Quantity * price
		v.UnrealizedPnL += pos.UnrealizedPnL(price)
	}
	v.TotalValue = v.CashBalance + v.PositionsValue
	return v
}

// TotalPnL is the mark-to-market profit over the initial balance.
func (p *Portfolio) TotalPnL(prices map[string]Quote) float64 {
	return p.MarkToMarket(prices).TotalValue - p.InitialBalance
}

// PositionStatus is the per-lot view returned by the status query.
type PositionStatus struct {
	Position
	CurrentPrice     float64
	UnrealizedPnL    float64
	UnrealizedPnLPct float64
}

// Status returns the portfolio snapshot with per-position unrealized P&L,
// falling back to entry prices for missing quotes.
func (p *Portfolio) Status(prices map[string]Quote) []PositionStatus {
	statuses := make([]PositionStatus, 0, len(p.Positions))
	for symbol, pos := range p.Positions {
		price := pos.EntryPrice
		if q, ok := prices[symbol]; ok && q.Price > 0 {
			price = q.Price
		}
		statuses = append(statuses, PositionStatus{
			Position:         pos,
			CurrentPrice:     price,
			UnrealizedPnL:    pos.UnrealizedPnL(price),
			UnrealizedPnLPct: pos.UnrealizedPnLPct(price),
		})
	}
	return statuses
}
