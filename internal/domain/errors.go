package domain

import (
	"errors"
	"fmt"
)

// ErrCollaboratorUnavailable marks a feed, model or store that timed out or
// errored. Callers degrade (no trading this cycle, stale-price fallback)
// instead of failing the session.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// ErrLeaseHeld is returned by a SessionLock when another session is active.
var ErrLeaseHeld = errors.New("session lease already held")

// DataQualityError flags a corrupt or unparseable record. The record is
// logged and skipped; it never aborts a whole replay or session.
type DataQualityError struct {
	TradeID string
	Symbol  string
	Field   string
	Reason  string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality: trade %s (%s): %s %s", e.TradeID, e.Symbol, e.Field, e.Reason)
}

// InvariantViolationError means the ledger implies an impossible state — two
// opens for one symbol, or a close with no open. It indicates upstream
// corruption and is escalated as a hard failure: trading on a known-corrupt
// portfolio is unsafe.
type InvariantViolationError struct {
	TradeID string
	Symbol  string
	Reason  string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("ledger invariant violated: trade %s (%s): %s", e.TradeID, e.Symbol, e.Reason)
}

// WriteError wraps a failed ledger append. It aborts only the trade being
// written; the session continues with the remaining symbols.
type WriteError struct {
	TradeID string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("ledger append failed: trade %s: %v", e.TradeID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
