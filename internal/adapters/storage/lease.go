package storage

// lease.go — session mutual exclusion backed by the ledger database.
//
// A single lease row gates trading sessions. SQLite's single-writer model
// makes the conditional upsert atomic, which is all the lease needs when the
// trader runs on one host. Multi-host deployments use the Redis lock instead.

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
	"github.com/google/uuid"
)

const leaseName = "trading-session"

// SQLiteLock implements ports.SessionLock on the ledger database.
type SQLiteLock struct {
	ledger *SQLiteLedger
}

// NewSQLiteLock creates a lock sharing the ledger's connection.
func NewSQLiteLock(ledger *SQLiteLedger) *SQLiteLock {
	return &SQLiteLock{ledger: ledger}
}

// Acquire takes the session lease for the given TTL. An unexpired lease held
// by someone else returns domain.ErrLeaseHeld; an expired one is stolen.
func (l *SQLiteLock) Acquire(ctx context.Context, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	now := time.Now().UTC()

	res, err := l.ledger.db.ExecContext(ctx, `
		INSERT INTO session_lease (name, token, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			token      = excluded.token,
			expires_at = excluded.expires_at
		WHERE session_lease.expires_at <= ?
	`,
		leaseName, token,
		now.Add(ttl).Format(timeFormat),
		now.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.Acquire: upsert lease: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("storage.Acquire: rows affected: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrLeaseHeld
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true

		// Background context so release works even when the session's
		// context is already cancelled.
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = l.ledger.db.ExecContext(relCtx,
			`DELETE FROM session_lease WHERE name = ? AND token = ?`,
			leaseName, token)
	}
	return release, nil
}

// Compile-time interface check.
var _ ports.SessionLock = (*SQLiteLock)(nil)
