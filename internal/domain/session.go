package domain

// SessionResult is the structured outcome of one trading session. A session
// always returns a result — zero trades (no model, no qualifying signals, no
// capital) is success, not failure.
type SessionResult struct {
	TradesExecuted int
	WalletBalance  float64
	PortfolioValue float64
	TotalPnL       float64
	Trades         []TradeRecord
	Warnings       []string
}
