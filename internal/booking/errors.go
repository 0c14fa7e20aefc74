package booking

import (
	"errors"
	"fmt"
)

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrCommitmentNotFound = errors.New("commitment not found")
	ErrResourceInactive   = errors.New("resource is not accepting bookings")

	// ErrDuplicateWindow is raised by the ledger when the unique backstop on
	// (resource_id, start_at, end_at) rejects an insert that slipped past the
	// lock-guarded conflict check.
	ErrDuplicateWindow = errors.New("a commitment for this exact window already exists")
)

// ConflictKind tags a legitimate concurrent-use outcome so callers can decide
// between retrying and surfacing the conflict.
type ConflictKind string

const (
	// ConflictSlotTaken: another active hold or confirmed booking occupies an
	// overlapping window. Re-query availability and pick a different slot.
	ConflictSlotTaken ConflictKind = "SLOT_TAKEN"
	// ConflictHoldExpired: the hold's TTL lapsed before confirmation.
	// Request a fresh hold.
	ConflictHoldExpired ConflictKind = "HOLD_EXPIRED"
	// ConflictNotHolding: confirm was called on a commitment that is not in
	// hold state; a logic error upstream.
	ConflictNotHolding ConflictKind = "NOT_HOLDING"
	// ConflictRaceLost: the conditional state transition failed because a
	// concurrent actor moved the commitment first.
	ConflictRaceLost ConflictKind = "RACE_LOST"
	// ConflictTimeout: the per-resource lock could not be acquired within the
	// wait budget. May be retried once with backoff.
	ConflictTimeout ConflictKind = "TIMEOUT"
)

type ConflictError struct {
	Kind   ConflictKind
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("reservation conflict: %s", e.Kind)
	}
	return fmt.Sprintf("reservation conflict: %s: %s", e.Kind, e.Detail)
}

func conflict(kind ConflictKind, detail string) *ConflictError {
	return &ConflictError{Kind: kind, Detail: detail}
}

// AsConflict unwraps err into a ConflictError if it is one.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
