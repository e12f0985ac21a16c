package risk

// monitor.go — the safety net behind the model.
//
// The monitor scans open lots against stop-loss/take-profit bounds using live
// prices only. It exists so exits still happen when prediction data for a
// held symbol is stale or unavailable, and runs strictly between model-driven
// exits and new entries so freed capital is usable in the same session.

import (
	"log/slog"
	"sort"

	"github.com/alejandrodnm/aitrader/internal/domain"
)

// Exit is a forced full-lot close instruction.
type Exit struct {
	Symbol string
	Price  float64
	Reason domain.ExitReason
}

// Monitor checks open positions against risk thresholds.
type Monitor struct {
	stopLossPct   float64
	takeProfitPct float64
}

// NewMonitor creates a Monitor with fractional thresholds (0.05 = 5%).
func NewMonitor(stopLossPct, takeProfitPct float64) *Monitor {
	return &Monitor{stopLossPct: stopLossPct, takeProfitPct: takeProfitPct}
}

// Check returns forced exits for every lot whose unrealized P&L breached a
// threshold, independent of model confidence. Symbols without a live quote
// are left alone — never exit on a price we don't have. Output is sorted by
// symbol so sessions are deterministic.
func (m *Monitor) Check(pf *domain.Portfolio, prices map[string]domain.Quote) []Exit {
	var exits []Exit
	for symbol, pos := range pf.Positions {
		q, ok := prices[symbol]
		if !ok || q.Price <= 0 {
			continue
		}
		// Compare at recorded percent precision: a move of exactly +10%
		// must reach a 10% bound despite float subtraction error.
		pnlPct := domain.RoundPercent(pos.UnrealizedPnLPct(q.Price)*100) / 100

		switch {
		case pnlPct <= -m.stopLossPct:
			slog.Info("risk: stop loss triggered",
				"symbol", symbol, "pnl_pct", pnlPct*100)
			exits = append(exits, Exit{Symbol: symbol, Price: q.Price, Reason: domain.ExitStopLoss})
		case pnlPct >= m.takeProfitPct:
			slog.Info("risk: take profit triggered",
				"symbol", symbol, "pnl_pct", pnlPct*100)
			exits = append(exits, Exit{Symbol: symbol, Price: q.Price, Reason: domain.ExitTakeProfit})
		}
	}
	sort.Slice(exits, func(i, j int) bool { return exits[i].Symbol < exits[j].Symbol })
	return exits
}
