package ports

import (
	"context"
	"time"
)

// SessionLock guarantees at most one trading session runs at a time against
// a given portfolio. Without it, two overlapping replay-then-mutate sequences
// can both believe a symbol is free to BUY and double-open a position.
type SessionLock interface {
	// Acquire obtains the session lease for the given TTL. On success it
	// returns a release function, safe to call more than once. It returns
	// domain.ErrLeaseHeld while another session holds the lease.
	Acquire(ctx context.Context, ttl time.Duration) (release func(), err error)
}
