package booking

import (
	"time"

	"github.com/google/uuid"
)

type CommitmentStatus string

const (
	StatusHold      CommitmentStatus = "hold"
	StatusConfirmed CommitmentStatus = "confirmed"
	StatusExpired   CommitmentStatus = "expired"
)

type CommitmentKind string

const (
	KindBooking CommitmentKind = "booking"
	KindTimeOff CommitmentKind = "timeoff"
)

type Tenant struct {
	ID          uuid.UUID
	Name        string
	WorkStart   string // default working-hours start, local wall clock HH:MM
	WorkEnd     string // default working-hours end, local wall clock HH:MM
	WorkingDays []int  // weekday indices, 0=Sunday
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Resource is a bookable entity (stylist, driver) owned by exactly one tenant.
// WorkStart/WorkEnd override the tenant defaults when set.
type Resource struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	WorkStart *string
	WorkEnd   *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Service struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	Name            string
	DurationMinutes int
	PriceCents      int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Commitment is the ledger's unit: a time window that occupies a resource.
// Bookings move hold -> confirmed or hold -> expired; time-off rows are
// created confirmed and block availability like any other commitment.
type Commitment struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ResourceID    uuid.UUID
	ServiceID     *uuid.UUID
	Kind          CommitmentKind
	Status        CommitmentStatus
	StartAt       time.Time
	EndAt         time.Time
	HoldExpiresAt *time.Time
	CustomerName  *string
	CustomerPhone *string
	Reason        *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ActiveAt reports whether the commitment blocks its window at the given
// instant: confirmed rows always do, hold rows only until their expiry.
func (c Commitment) ActiveAt(asOf time.Time) bool {
	switch c.Status {
	case StatusConfirmed:
		return true
	case StatusHold:
		return c.HoldExpiresAt != nil && c.HoldExpiresAt.After(asOf)
	default:
		return false
	}
}

// Overlaps tests half-open interval overlap against [start, end).
func (c Commitment) Overlaps(start, end time.Time) bool {
	return c.StartAt.Before(end) && start.Before(c.EndAt)
}

// Slot is a candidate time window offered to a customer as available.
type Slot struct {
	ResourceID   uuid.UUID
	ResourceName string
	StartAt      time.Time
	EndAt        time.Time
}
