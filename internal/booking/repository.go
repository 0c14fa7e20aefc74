package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ledger is the durable record of time windows that occupy a resource.
// The engine is the sole writer of commitment state; availability reads go
// through ListActiveCommitments only.
type Ledger interface {
	// ListActiveCommitments returns all commitments overlapping
	// [windowStart, windowEnd) that block the window as of asOf: confirmed
	// rows plus holds whose expiry is still in the future. The read is a
	// single consistent snapshot.
	ListActiveCommitments(ctx context.Context, resourceID uuid.UUID, windowStart, windowEnd, asOf time.Time) ([]Commitment, error)

	// InsertHold inserts unconditionally; conflict checking is the caller's
	// responsibility under the per-resource lock. Returns ErrDuplicateWindow
	// if the unique backstop rejects the row.
	InsertHold(ctx context.Context, hold Commitment) (*Commitment, error)

	GetCommitment(ctx context.Context, id uuid.UUID) (*Commitment, error)

	// Transition conditionally moves a commitment from one status to another.
	// Returns ErrCommitmentNotFound when no row matches (id, from), which is
	// the optimistic-concurrency guard.
	Transition(ctx context.Context, id uuid.UUID, from, to CommitmentStatus) (*Commitment, error)

	// ExpireLapsedInWindow flips lapsed holds overlapping [windowStart,
	// windowEnd) to expired. CreateHold runs this under the resource lock so
	// a lapsed hold's row never trips the exact-window unique backstop.
	ExpireLapsedInWindow(ctx context.Context, resourceID uuid.UUID, windowStart, windowEnd, now time.Time) (int, error)

	// FindLapsedHolds lists holds whose expiry has passed, for the janitor.
	FindLapsedHolds(ctx context.Context, now time.Time) ([]Commitment, error)
}

// Directory is the read-only tenant/resource lookup service.
type Directory interface {
	GetTenant(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetResource(ctx context.Context, id uuid.UUID) (*Resource, error)
	ListActiveResources(ctx context.Context, tenantID uuid.UUID) ([]Resource, error)
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
}

// Notifier is invoked after a successful confirm, fire-and-forget: delivery
// failure is logged and never surfaced to the confirm caller.
type Notifier interface {
	CommitmentConfirmed(ctx context.Context, c Commitment) error
}
