package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

// Console prints session results to stdout. By default one compact line per
// cycle; with table mode on, the executed trades and open positions too.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole creates a console notifier. table enables the full-table output.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NotifySession prints the cycle summary.
func (c *Console) NotifySession(_ context.Context, result domain.SessionResult) error {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s][PAPER] %d trades | bal $%.2f | value $%.2f | pnl %+.2f",
		now, result.TradesExecuted, result.WalletBalance,
		result.PortfolioValue, result.TotalPnL)
	for i, warn := range result.Warnings {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&sb, "\n  !! %s", warn)
	}
	fmt.Fprintln(c.out, sb.String())

	if !c.table || len(result.Trades) == 0 {
		return nil
	}

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Time", "Action", "Symbol", "Qty", "Price", "Value", "PnL", "PnL%", "Reason")
	for _, t := range result.Trades {
		pnlLabel, pctLabel := "", ""
		if t.Action == domain.ActionSell {
			pnlLabel = fmt.Sprintf("$%.4f", t.PnL)
			pctLabel = fmt.Sprintf("%.2f%%", t.PnLPercent)
		}
		tbl.Append(
			t.Timestamp.Format("15:04:05"),
			string(t.Action),
			t.Symbol,
			fmt.Sprintf("%.8f", t.Quantity),
			fmt.Sprintf("%.5f", t.Price),
			fmt.Sprintf("$%.2f", t.Value),
			pnlLabel,
			pctLabel,
			string(t.ExitReason),
		)
	}
	tbl.Render()
	return nil
}

// NotifyStatus prints the portfolio valuation and the open lots.
func (c *Console) NotifyStatus(_ context.Context, v domain.Valuation, positions []domain.PositionStatus) error {
	fmt.Fprintf(c.out, "cash $%.2f | positions $%.2f | total $%.2f | unrealized %+.2f\n",
		v.CashBalance, v.PositionsValue, v.TotalValue, v.UnrealizedPnL)

	if len(positions) == 0 {
		fmt.Fprintln(c.out, "no open positions")
		return nil
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Symbol", "Type", "Qty", "Entry", "Current", "PnL", "PnL%", "Opened")
	for _, p := range positions {
		tbl.Append(
			p.Symbol,
			string(p.MarketType),
			fmt.Sprintf("%.8f", p.Quantity),
			fmt.Sprintf("%.5f", p.EntryPrice),
			fmt.Sprintf("%.5f", p.CurrentPrice),
			fmt.Sprintf("$%.4f", p.UnrealizedPnL),
			fmt.Sprintf("%.2f%%", p.UnrealizedPnLPct*100),
			p.EntryTime.Format("01-02 15:04"),
		)
	}
	tbl.Render()
	return nil
}

// Compile-time interface check.
var _ ports.Notifier = (*Console)(nil)
