package storage

// sqlite.go — the durable trade ledger.
//
// One row per trade, append-only: no UPDATE or DELETE statement exists in
// this package for the trades table. Timestamps are stored as fixed-width
// UTC text so sub-second ordering survives the round trip and replay
// tie-breaks on trade id only when two records truly collide.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/aitrader/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    trade_id              TEXT PRIMARY KEY,
    symbol                TEXT NOT NULL,
    market_type           TEXT NOT NULL,
    action                TEXT NOT NULL,
    quantity              REAL NOT NULL,
    price                 REAL NOT NULL,
    value                 REAL NOT NULL,
    timestamp             TEXT NOT NULL,
    confidence            REAL NOT NULL DEFAULT 0,
    predicted_change_pct  REAL NOT NULL DEFAULT 0,
    entry_price           REAL,
    pnl                   REAL,
    pnl_percent           REAL,
    exit_reason           TEXT,
    original_trade_id     TEXT,
    wallet_balance_before REAL NOT NULL,
    wallet_balance_after  REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_ts     ON trades(timestamp);
CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);

CREATE TABLE IF NOT EXISTS session_lease (
    name       TEXT PRIMARY KEY,
    token      TEXT NOT NULL,
    expires_at TEXT NOT NULL
);
`

// timeFormat is fixed-width so lexicographic comparison in SQL matches
// chronological order (RFC3339Nano trims trailing zeros and would not).
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteLedger implements ports.LedgerStore using SQLite (pure Go, no CGo).
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (or creates) the database at the given path and
// applies the schema.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLedger: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: apply schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Append persists one trade record. Records are immutable: a duplicate trade
// id is a conflict error, never an overwrite.
func (s *SQLiteLedger) Append(ctx context.Context, t domain.TradeRecord) error {
	var entryPrice, pnl, pnlPercent sql.NullFloat64
	var exitReason, originalTradeID sql.NullString
	if t.Action == domain.ActionSell {
		entryPrice = sql.NullFloat64{Float64: t.EntryPrice, Valid: true}
		pnl = sql.NullFloat64{Float64: t.PnL, Valid: true}
		pnlPercent = sql.NullFloat64{Float64: t.PnLPercent, Valid: true}
		originalTradeID = sql.NullString{String: t.OriginalTradeID, Valid: true}
		if t.ExitReason != "" {
			exitReason = sql.NullString{String: string(t.ExitReason), Valid: true}
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades
			(trade_id, symbol, market_type, action, quantity, price, value,
			 timestamp, confidence, predicted_change_pct,
			 entry_price, pnl, pnl_percent, exit_reason, original_trade_id,
			 wallet_balance_before, wallet_balance_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.TradeID, t.Symbol, string(t.MarketType), string(t.Action),
		t.Quantity, t.Price, t.Value,
		t.Timestamp.UTC().Format(timeFormat),
		t.Confidence, t.PredictedChangePct,
		entryPrice, pnl, pnlPercent, exitReason, originalTradeID,
		t.WalletBalanceBefore, t.WalletBalanceAfter,
	)
	if err != nil {
		return fmt.Errorf("storage.Append: insert %s: %w", t.TradeID, err)
	}
	return nil
}

// QueryRange returns records with timestamps in [from, to]. Order is not
// part of the contract — the replayer sorts.
func (s *SQLiteLedger) QueryRange(ctx context.Context, from, to time.Time) ([]domain.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, symbol, market_type, action, quantity, price, value,
		       timestamp, confidence, predicted_change_pct,
		       entry_price, pnl, pnl_percent, exit_reason, original_trade_id,
		       wallet_balance_before, wallet_balance_after
		FROM trades
		WHERE timestamp BETWEEN ? AND ?
	`,
		from.UTC().Format(timeFormat),
		to.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.QueryRange: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var marketType, action, ts string
		var entryPrice, pnl, pnlPercent sql.NullFloat64
		var exitReason, originalTradeID sql.NullString

		if err := rows.Scan(
			&t.TradeID, &t.Symbol, &marketType, &action,
			&t.Quantity, &t.Price, &t.Value,
			&ts, &t.Confidence, &t.PredictedChangePct,
			&entryPrice, &pnl, &pnlPercent, &exitReason, &originalTradeID,
			&t.WalletBalanceBefore, &t.WalletBalanceAfter,
		); err != nil {
			return nil, fmt.Errorf("storage.QueryRange: scan row: %w", err)
		}

		t.MarketType = domain.MarketType(marketType)
		t.Action = domain.Action(action)
		t.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("storage.QueryRange: parse timestamp %q: %w", ts, err)
		}
		t.EntryPrice = entryPrice.Float64
		t.PnL = pnl.Float64
		t.PnLPercent = pnlPercent.Float64
		t.ExitReason = domain.ExitReason(exitReason.String)
		t.OriginalTradeID = originalTradeID.String

		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.QueryRange: rows: %w", err)
	}
	return trades, nil
}

// Close closes the database connection cleanly.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}
