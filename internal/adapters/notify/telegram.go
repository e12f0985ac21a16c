package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

// Telegram pushes session summaries to a chat. It only sends when trades
// executed or something went wrong — quiet cycles stay quiet.
type Telegram struct {
	bot    *tele.Bot
	chatID int64
}

// NewTelegram creates the notifier. It validates the token against the API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("notify.NewTelegram: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NotifySession sends the cycle summary when there is something to say.
func (t *Telegram) NotifySession(_ context.Context, result domain.SessionResult) error {
	if result.TradesExecuted == 0 && len(result.Warnings) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Paper trading: %d trades\n", result.TradesExecuted)
	fmt.Fprintf(&sb, "Balance: $%.2f | Value: $%.2f | PnL: %+.2f\n",
		result.WalletBalance, result.PortfolioValue, result.TotalPnL)
	for _, tr := range result.Trades {
		if tr.Action == domain.ActionSell {
			fmt.Fprintf(&sb, "%s %s @ %.5f (pnl %+.4f, %s)\n",
				tr.Action, tr.Symbol, tr.Price, tr.PnL, tr.ExitReason)
		} else {
			fmt.Fprintf(&sb, "%s %s @ %.5f ($%.2f)\n",
				tr.Action, tr.Symbol, tr.Price, tr.Value)
		}
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(&sb, "warning: %s\n", warn)
	}

	if _, err := t.bot.Send(tele.ChatID(t.chatID), sb.String()); err != nil {
		return fmt.Errorf("notify.NotifySession: telegram send: %w", err)
	}
	return nil
}

// NotifyStatus sends the portfolio snapshot.
func (t *Telegram) NotifyStatus(_ context.Context, v domain.Valuation, positions []domain.PositionStatus) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Portfolio: cash $%.2f | total $%.2f | unrealized %+.2f\n",
		v.CashBalance, v.TotalValue, v.UnrealizedPnL)
	for _, p := range positions {
		fmt.Fprintf(&sb, "%s: %.8f @ %.5f → %.5f (%+.2f%%)\n",
			p.Symbol, p.Quantity, p.EntryPrice, p.CurrentPrice, p.UnrealizedPnLPct*100)
	}

	if _, err := t.bot.Send(tele.ChatID(t.chatID), sb.String()); err != nil {
		return fmt.Errorf("notify.NotifyStatus: telegram send: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ ports.Notifier = (*Telegram)(nil)
