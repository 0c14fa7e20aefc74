package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/slotwise/booking-engine/internal/clock"
	"github.com/slotwise/booking-engine/internal/config"
	redisclient "github.com/slotwise/booking-engine/internal/redis"
)

// Engine is the reservation core: it computes availability across a tenant's
// resources and drives the hold -> confirmed / hold -> expired lifecycle.
// All read-then-write sequences that decide whether a hold or confirm may
// proceed run inside the per-resource lock so that two concurrent attempts on
// overlapping windows cannot both observe "no conflict".
type Engine struct {
	ledger    Ledger
	directory Directory
	locker    redisclient.Locker
	notifier  Notifier
	clk       clock.Clock
	logger    *zap.Logger
	cfg       config.Config
}

func NewEngine(ledger Ledger, directory Directory, locker redisclient.Locker, notifier Notifier, clk clock.Clock, logger *zap.Logger, cfg config.Config) *Engine {
	return &Engine{
		ledger:    ledger,
		directory: directory,
		locker:    locker,
		notifier:  notifier,
		clk:       clk,
		logger:    logger,
		cfg:       cfg,
	}
}

func (e *Engine) slotStep() time.Duration {
	if e.cfg.SlotStepMinutes > 0 {
		return time.Duration(e.cfg.SlotStepMinutes) * time.Minute
	}
	return DefaultSlotStepMinutes * time.Minute
}

// ComputeAvailability fans the slot calculation out across all active
// resources for the tenant/service (optionally a single resource), merges the
// results and sorts by start instant, ties broken by resource ID. An empty
// result is a valid answer, not an error.
func (e *Engine) ComputeAvailability(ctx context.Context, tenantID, serviceID uuid.UUID, localDate string, offsetMinutes int, resourceID *uuid.UUID) ([]Slot, error) {
	tenant, err := e.directory.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	svc, err := e.lookupService(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}

	date, err := clock.ParseLocalDate(localDate)
	if err != nil {
		return nil, err
	}
	if !isWorkingDay(*tenant, date) {
		return []Slot{}, nil
	}

	var resources []Resource
	if resourceID != nil {
		r, err := e.directory.GetResource(ctx, *resourceID)
		if err != nil {
			return nil, err
		}
		if r.TenantID != tenantID {
			return nil, ErrResourceNotFound
		}
		if r.Active {
			resources = append(resources, *r)
		}
	} else {
		resources, err = e.directory.ListActiveResources(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("list resources: %w", err)
		}
	}
	if len(resources) == 0 {
		return []Slot{}, nil
	}

	perResource := make([][]Slot, len(resources))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range resources {
		g.Go(func() error {
			slots, err := e.computeSlots(gctx, *tenant, r, *svc, localDate, offsetMinutes)
			if err != nil {
				return fmt.Errorf("compute slots for resource %s: %w", r.ID, err)
			}
			perResource[i] = slots
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]Slot, 0)
	for _, slots := range perResource {
		merged = append(merged, slots...)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].StartAt.Equal(merged[j].StartAt) {
			return merged[i].StartAt.Before(merged[j].StartAt)
		}
		return strings.Compare(merged[i].ResourceID.String(), merged[j].ResourceID.String()) < 0
	})
	return merged, nil
}

// ComputeSlots returns the open slots for one resource on a calendar day.
// The working window is interpreted in the caller-supplied UTC offset, so the
// returned instants are directly renderable in the caller's timezone.
func (e *Engine) ComputeSlots(ctx context.Context, resourceID, serviceID uuid.UUID, localDate string, offsetMinutes int) ([]Slot, error) {
	resource, err := e.directory.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	tenant, err := e.directory.GetTenant(ctx, resource.TenantID)
	if err != nil {
		return nil, err
	}
	svc, err := e.lookupService(ctx, resource.TenantID, serviceID)
	if err != nil {
		return nil, err
	}
	date, err := clock.ParseLocalDate(localDate)
	if err != nil {
		return nil, err
	}
	if !isWorkingDay(*tenant, date) {
		return []Slot{}, nil
	}
	return e.computeSlots(ctx, *tenant, *resource, *svc, localDate, offsetMinutes)
}

func (e *Engine) computeSlots(ctx context.Context, tenant Tenant, resource Resource, svc Service, localDate string, offsetMinutes int) ([]Slot, error) {
	startHHMM, endHHMM := workingHours(resource, tenant)

	windowStart, err := clock.ToAbsolute(localDate, startHHMM, offsetMinutes)
	if err != nil {
		return nil, err
	}
	windowEnd, err := clock.ToAbsolute(localDate, endHHMM, offsetMinutes)
	if err != nil {
		return nil, err
	}

	now := e.clk.Now()
	busy, err := e.ledger.ListActiveCommitments(ctx, resource.ID, windowStart, windowEnd, now)
	if err != nil {
		return nil, fmt.Errorf("list active commitments: %w", err)
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	return buildSlots(resource, windowStart, windowEnd, duration, e.slotStep(), busy, now), nil
}

type CreateHoldInput struct {
	TenantID       uuid.UUID
	ServiceID      uuid.UUID
	ResourceID     uuid.UUID
	LocalDate      string
	LocalStartTime string
	OffsetMinutes  int
	CustomerName   string
	CustomerPhone  string
	// HoldTTL overrides the configured TTL when positive.
	HoldTTL time.Duration
}

// CreateHold reserves [start, start+duration) on a resource as a TTL-bounded
// hold. The conflict check and the insert run inside the per-resource lock;
// a failed lock wait surfaces as a TIMEOUT conflict.
func (e *Engine) CreateHold(ctx context.Context, in CreateHoldInput) (*Commitment, error) {
	svc, err := e.lookupService(ctx, in.TenantID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	resource, err := e.directory.GetResource(ctx, in.ResourceID)
	if err != nil {
		return nil, err
	}
	if resource.TenantID != in.TenantID {
		return nil, ErrResourceNotFound
	}
	if !resource.Active {
		return nil, ErrResourceInactive
	}

	start, err := clock.ToAbsolute(in.LocalDate, in.LocalStartTime, in.OffsetMinutes)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	ttl := in.HoldTTL
	if ttl <= 0 {
		ttl = e.cfg.HoldTTL
	}

	var created *Commitment
	err = e.locker.WithResourceLock(ctx, in.ResourceID, func(lockCtx context.Context) error {
		now := e.clk.Now()

		// Clear out lapsed holds first: their rows still occupy the unique
		// index on the exact window even though they no longer block.
		if _, err := e.ledger.ExpireLapsedInWindow(lockCtx, in.ResourceID, start, end, now); err != nil {
			return fmt.Errorf("expire lapsed holds: %w", err)
		}

		busy, err := e.ledger.ListActiveCommitments(lockCtx, in.ResourceID, start, end, now)
		if err != nil {
			return fmt.Errorf("check conflicts: %w", err)
		}
		if len(busy) > 0 {
			return conflict(ConflictSlotTaken, "an active hold or confirmed booking overlaps this window")
		}

		expiresAt := now.Add(ttl)
		hold := Commitment{
			ID:            uuid.New(),
			TenantID:      in.TenantID,
			ResourceID:    in.ResourceID,
			ServiceID:     &in.ServiceID,
			Kind:          KindBooking,
			Status:        StatusHold,
			StartAt:       start,
			EndAt:         end,
			HoldExpiresAt: &expiresAt,
		}
		if in.CustomerName != "" {
			hold.CustomerName = &in.CustomerName
		}
		if in.CustomerPhone != "" {
			hold.CustomerPhone = &in.CustomerPhone
		}

		created, err = e.ledger.InsertHold(lockCtx, hold)
		if err != nil {
			if errors.Is(err, ErrDuplicateWindow) {
				return conflict(ConflictSlotTaken, "an identical window was just reserved")
			}
			return fmt.Errorf("insert hold: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, conflict(ConflictTimeout, "could not acquire the resource lock in time")
		}
		return nil, err
	}

	e.logger.Info("hold created",
		zap.String("commitment_id", created.ID.String()),
		zap.String("resource_id", in.ResourceID.String()),
		zap.Time("start_at", created.StartAt),
		zap.Time("end_at", created.EndAt),
		zap.Timep("hold_expires_at", created.HoldExpiresAt),
	)
	return created, nil
}

// Confirm finalizes a hold. Confirming an already confirmed commitment is an
// idempotent success. The conflict re-check before the conditional transition
// defends against a window that was freed and re-taken while the hold's TTL
// was running.
func (e *Engine) Confirm(ctx context.Context, id uuid.UUID) (*Commitment, error) {
	c, err := e.ledger.GetCommitment(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status == StatusConfirmed {
		return c, nil
	}
	if c.Status != StatusHold {
		return nil, conflict(ConflictNotHolding, fmt.Sprintf("commitment is %s", c.Status))
	}

	now := e.clk.Now()
	if c.HoldExpiresAt == nil || !c.HoldExpiresAt.After(now) {
		if _, err := e.ledger.Transition(ctx, c.ID, StatusHold, StatusExpired); err != nil && !errors.Is(err, ErrCommitmentNotFound) {
			e.logger.Warn("failed to persist hold expiry during confirm",
				zap.String("commitment_id", c.ID.String()), zap.Error(err))
		}
		return nil, conflict(ConflictHoldExpired, "the hold expired before confirmation")
	}

	var confirmed *Commitment
	err = e.locker.WithResourceLock(ctx, c.ResourceID, func(lockCtx context.Context) error {
		busy, err := e.ledger.ListActiveCommitments(lockCtx, c.ResourceID, c.StartAt, c.EndAt, e.clk.Now())
		if err != nil {
			return fmt.Errorf("recheck conflicts: %w", err)
		}
		for _, b := range busy {
			if b.ID != c.ID {
				return conflict(ConflictSlotTaken, "another booking took this window while the hold was pending")
			}
		}

		confirmed, err = e.ledger.Transition(lockCtx, c.ID, StatusHold, StatusConfirmed)
		if err != nil {
			if errors.Is(err, ErrCommitmentNotFound) {
				return conflict(ConflictRaceLost, "the hold was moved by a concurrent request")
			}
			return fmt.Errorf("confirm transition: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, conflict(ConflictTimeout, "could not acquire the resource lock in time")
		}
		return nil, err
	}

	e.logger.Info("commitment confirmed",
		zap.String("commitment_id", confirmed.ID.String()),
		zap.String("resource_id", confirmed.ResourceID.String()),
		zap.Time("start_at", confirmed.StartAt),
	)
	e.notifyConfirmed(ctx, *confirmed)
	return confirmed, nil
}

// GetCommitment loads one commitment by ID.
func (e *Engine) GetCommitment(ctx context.Context, id uuid.UUID) (*Commitment, error) {
	return e.ledger.GetCommitment(ctx, id)
}

// ListResources returns the tenant's active resources. Channel adapters use
// this to resolve a customer's pick ("with Dana, please") to a resource ID.
func (e *Engine) ListResources(ctx context.Context, tenantID uuid.UUID) ([]Resource, error) {
	if _, err := e.directory.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return e.directory.ListActiveResources(ctx, tenantID)
}

// ExpireLapsedHolds flips stale holds to expired. Bookkeeping only: every
// read path already filters on hold expiry, so correctness never depends on
// this running.
func (e *Engine) ExpireLapsedHolds(ctx context.Context) (int, error) {
	now := e.clk.Now()
	lapsed, err := e.ledger.FindLapsedHolds(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("find lapsed holds: %w", err)
	}

	expired := 0
	for _, c := range lapsed {
		if _, err := e.ledger.Transition(ctx, c.ID, StatusHold, StatusExpired); err != nil {
			if errors.Is(err, ErrCommitmentNotFound) {
				// Someone confirmed or expired it between the scan and now.
				continue
			}
			e.logger.Warn("failed to expire hold",
				zap.String("commitment_id", c.ID.String()), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

func (e *Engine) lookupService(ctx context.Context, tenantID, serviceID uuid.UUID) (*Service, error) {
	svc, err := e.directory.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.TenantID != tenantID {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

func (e *Engine) notifyConfirmed(ctx context.Context, c Commitment) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.CommitmentConfirmed(ctx, c); err != nil {
		e.logger.Warn("confirmation notification failed",
			zap.String("commitment_id", c.ID.String()), zap.Error(err))
	}
}
