package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotwise/booking-engine/internal/clock"
	"github.com/slotwise/booking-engine/internal/config"
	redisclient "github.com/slotwise/booking-engine/internal/redis"
)

// memLedger is an in-memory Ledger guarded by a mutex. Combined with
// memLocker it reproduces the serialization the production stack gets from
// Redis locks plus Postgres.
type memLedger struct {
	mu   sync.Mutex
	rows map[uuid.UUID]Commitment
}

func newMemLedger() *memLedger {
	return &memLedger{rows: make(map[uuid.UUID]Commitment)}
}

func (l *memLedger) ListActiveCommitments(_ context.Context, resourceID uuid.UUID, windowStart, windowEnd, asOf time.Time) ([]Commitment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result []Commitment
	for _, c := range l.rows {
		if c.ResourceID != resourceID {
			continue
		}
		if !c.Overlaps(windowStart, windowEnd) {
			continue
		}
		if !c.ActiveAt(asOf) {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (l *memLedger) InsertHold(_ context.Context, hold Commitment) (*Commitment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range l.rows {
		if c.ResourceID == hold.ResourceID && c.Status != StatusExpired &&
			c.StartAt.Equal(hold.StartAt) && c.EndAt.Equal(hold.EndAt) {
			return nil, ErrDuplicateWindow
		}
	}

	if hold.ID == uuid.Nil {
		hold.ID = uuid.New()
	}
	hold.Kind = KindBooking
	hold.Status = StatusHold
	l.rows[hold.ID] = hold
	return &hold, nil
}

func (l *memLedger) GetCommitment(_ context.Context, id uuid.UUID) (*Commitment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.rows[id]
	if !ok {
		return nil, ErrCommitmentNotFound
	}
	return &c, nil
}

func (l *memLedger) Transition(_ context.Context, id uuid.UUID, from, to CommitmentStatus) (*Commitment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.rows[id]
	if !ok || c.Status != from {
		return nil, ErrCommitmentNotFound
	}
	c.Status = to
	l.rows[id] = c
	return &c, nil
}

func (l *memLedger) ExpireLapsedInWindow(_ context.Context, resourceID uuid.UUID, windowStart, windowEnd, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expired := 0
	for id, c := range l.rows {
		if c.ResourceID != resourceID || c.Status != StatusHold {
			continue
		}
		if c.HoldExpiresAt == nil || c.HoldExpiresAt.After(now) {
			continue
		}
		if !c.Overlaps(windowStart, windowEnd) {
			continue
		}
		c.Status = StatusExpired
		l.rows[id] = c
		expired++
	}
	return expired, nil
}

func (l *memLedger) FindLapsedHolds(_ context.Context, now time.Time) ([]Commitment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result []Commitment
	for _, c := range l.rows {
		if c.Status == StatusHold && c.HoldExpiresAt != nil && c.HoldExpiresAt.Before(now) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (l *memLedger) status(t *testing.T, id uuid.UUID) CommitmentStatus {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.rows[id]
	if !ok {
		t.Fatalf("commitment %s not in ledger", id)
	}
	return c.Status
}

type memDirectory struct {
	tenants   map[uuid.UUID]Tenant
	resources map[uuid.UUID]Resource
	services  map[uuid.UUID]Service
}

func (d *memDirectory) GetTenant(_ context.Context, id uuid.UUID) (*Tenant, error) {
	t, ok := d.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return &t, nil
}

func (d *memDirectory) GetResource(_ context.Context, id uuid.UUID) (*Resource, error) {
	r, ok := d.resources[id]
	if !ok {
		return nil, ErrResourceNotFound
	}
	return &r, nil
}

func (d *memDirectory) ListActiveResources(_ context.Context, tenantID uuid.UUID) ([]Resource, error) {
	var result []Resource
	for _, r := range d.resources {
		if r.TenantID == tenantID && r.Active {
			result = append(result, r)
		}
	}
	return result, nil
}

func (d *memDirectory) GetService(_ context.Context, id uuid.UUID) (*Service, error) {
	s, ok := d.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return &s, nil
}

// memLocker serializes critical sections per resource with local mutexes,
// standing in for the Redis lock.
type memLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newMemLocker() *memLocker {
	return &memLocker{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *memLocker) WithResourceLock(ctx context.Context, resourceID uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.locks[resourceID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[resourceID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// failLocker refuses every acquisition, as a saturated Redis lock would.
type failLocker struct{}

func (failLocker) WithResourceLock(ctx context.Context, resourceID uuid.UUID, fn func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (n *recordingNotifier) CommitmentConfirmed(_ context.Context, c Commitment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c.ID)
	return n.err
}

// movableClock is a settable clock for temporal assertions.
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *movableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ clock.Clock = (*movableClock)(nil)

type fixture struct {
	engine   *Engine
	ledger   *memLedger
	notifier *recordingNotifier
	clk      *movableClock

	tenantID   uuid.UUID
	serviceID  uuid.UUID
	resourceID uuid.UUID
	resource2  uuid.UUID
}

// newFixture builds an engine over a tenant working Mon-Sat 09:00-17:00 with
// two active resources and one 60 minute service.
func newFixture(t *testing.T, locker redisclient.Locker) *fixture {
	t.Helper()

	f := &fixture{
		ledger:     newMemLedger(),
		notifier:   &recordingNotifier{},
		clk:        &movableClock{},
		tenantID:   uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"),
		serviceID:  uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001"),
		resourceID: uuid.MustParse("cccccccc-0000-0000-0000-000000000001"),
		resource2:  uuid.MustParse("cccccccc-0000-0000-0000-000000000002"),
	}
	// 2026-03-02 is a Monday.
	f.clk.Set(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	dir := &memDirectory{
		tenants: map[uuid.UUID]Tenant{
			f.tenantID: {
				ID:          f.tenantID,
				Name:        "Shear Genius",
				WorkStart:   "09:00",
				WorkEnd:     "17:00",
				WorkingDays: []int{1, 2, 3, 4, 5, 6},
			},
		},
		resources: map[uuid.UUID]Resource{
			f.resourceID: {ID: f.resourceID, TenantID: f.tenantID, Name: "Dana", Active: true},
			f.resource2:  {ID: f.resource2, TenantID: f.tenantID, Name: "Riley", Active: true},
		},
		services: map[uuid.UUID]Service{
			f.serviceID: {ID: f.serviceID, TenantID: f.tenantID, Name: "Haircut", DurationMinutes: 60, PriceCents: 4500},
		},
	}

	if locker == nil {
		locker = newMemLocker()
	}

	cfg := config.Config{
		HoldTTL:         5 * time.Minute,
		SlotStepMinutes: 30,
	}
	f.engine = NewEngine(f.ledger, dir, locker, f.notifier, f.clk, zap.NewNop(), cfg)
	return f
}

func (f *fixture) holdInput(hhmm string) CreateHoldInput {
	return CreateHoldInput{
		TenantID:       f.tenantID,
		ServiceID:      f.serviceID,
		ResourceID:     f.resourceID,
		LocalDate:      "2026-03-02",
		LocalStartTime: hhmm,
		OffsetMinutes:  0,
		CustomerName:   "Sam",
		CustomerPhone:  "+15550100",
	}
}

func TestCreateHold(t *testing.T) {
	f := newFixture(t, nil)

	c, err := f.engine.CreateHold(context.Background(), f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusHold {
		t.Fatalf("expected hold status, got %s", c.Status)
	}
	if !c.StartAt.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %s", c.StartAt)
	}
	if !c.EndAt.Equal(time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", c.EndAt)
	}
	wantExpiry := f.clk.Now().Add(5 * time.Minute)
	if c.HoldExpiresAt == nil || !c.HoldExpiresAt.Equal(wantExpiry) {
		t.Fatalf("unexpected expiry: %v, want %s", c.HoldExpiresAt, wantExpiry)
	}
}

func TestCreateHold_CallerOffsetWindow(t *testing.T) {
	f := newFixture(t, nil)

	in := f.holdInput("10:00")
	in.OffsetMinutes = -300 // caller five hours west of UTC

	c, err := f.engine.CreateHold(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.StartAt.Equal(time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start instant: %s", c.StartAt.UTC())
	}
}

func TestCreateHold_OverlapConflict(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.engine.CreateHold(ctx, f.holdInput("10:00")); err != nil {
		t.Fatalf("first hold: %v", err)
	}

	// 10:30 overlaps the 10:00-11:00 hold.
	_, err := f.engine.CreateHold(ctx, f.holdInput("10:30"))
	ce, ok := AsConflict(err)
	if !ok || ce.Kind != ConflictSlotTaken {
		t.Fatalf("expected SLOT_TAKEN, got %v", err)
	}

	// 11:00 is adjacent, half-open windows do not collide.
	if _, err := f.engine.CreateHold(ctx, f.holdInput("11:00")); err != nil {
		t.Fatalf("adjacent hold: %v", err)
	}
}

func TestCreateHold_ConcurrentExactlyOneWins(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	const attempts = 32

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.CreateHold(ctx, f.holdInput("10:00"))
		}(i)
	}
	wg.Wait()

	wins, taken := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			ce, ok := AsConflict(err)
			if !ok || ce.Kind != ConflictSlotTaken {
				t.Fatalf("unexpected error: %v", err)
			}
			taken++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if taken != attempts-1 {
		t.Fatalf("expected %d SLOT_TAKEN, got %d", attempts-1, taken)
	}
}

func TestCreateHold_LockTimeout(t *testing.T) {
	f := newFixture(t, failLocker{})

	_, err := f.engine.CreateHold(context.Background(), f.holdInput("10:00"))
	ce, ok := AsConflict(err)
	if !ok || ce.Kind != ConflictTimeout {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}

func TestCreateHold_LapsedHoldDoesNotBlock(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.engine.CreateHold(ctx, f.holdInput("10:00")); err != nil {
		t.Fatalf("first hold: %v", err)
	}

	// After the TTL passes the hold stops blocking, with no janitor run.
	f.clk.Advance(6 * time.Minute)
	if _, err := f.engine.CreateHold(ctx, f.holdInput("10:30")); err != nil {
		t.Fatalf("hold after lapse: %v", err)
	}
}

func TestCreateHold_ExactWindowAfterLapse(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("first hold: %v", err)
	}

	// The lapsed hold's row must not trip the exact-window uniqueness
	// backstop for the next customer.
	f.clk.Advance(6 * time.Minute)
	second, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("re-hold of lapsed window: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a fresh commitment")
	}
	if got := f.ledger.status(t, first.ID); got != StatusExpired {
		t.Fatalf("lapsed hold should be persisted expired, got %s", got)
	}
}

func TestCreateHold_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	t.Run("invalid time", func(t *testing.T) {
		in := f.holdInput("25:00")
		_, err := f.engine.CreateHold(ctx, in)
		var invalid *clock.InvalidTimeError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidTimeError, got %v", err)
		}
	})

	t.Run("unknown service", func(t *testing.T) {
		in := f.holdInput("10:00")
		in.ServiceID = uuid.New()
		if _, err := f.engine.CreateHold(ctx, in); !errors.Is(err, ErrServiceNotFound) {
			t.Fatalf("expected ErrServiceNotFound, got %v", err)
		}
	})

	t.Run("unknown resource", func(t *testing.T) {
		in := f.holdInput("10:00")
		in.ResourceID = uuid.New()
		if _, err := f.engine.CreateHold(ctx, in); !errors.Is(err, ErrResourceNotFound) {
			t.Fatalf("expected ErrResourceNotFound, got %v", err)
		}
	})
}

func TestConfirm(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	held, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	confirmed, err := f.engine.Confirm(ctx, held.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}
	if len(f.notifier.calls) != 1 || f.notifier.calls[0] != held.ID {
		t.Fatalf("expected one notification for %s, got %v", held.ID, f.notifier.calls)
	}
}

func TestConfirm_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	held, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	first, err := f.engine.Confirm(ctx, held.ID)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	second, err := f.engine.Confirm(ctx, held.ID)
	if err != nil {
		t.Fatalf("second confirm should be idempotent, got %v", err)
	}
	if second.ID != first.ID || second.Status != StatusConfirmed {
		t.Fatalf("second confirm returned %+v", second)
	}
	// No second notification for the idempotent path.
	if len(f.notifier.calls) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.calls))
	}
}

func TestConfirm_HoldExpired(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	held, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	// TTL is five minutes; confirm at six.
	f.clk.Advance(6 * time.Minute)

	_, err = f.engine.Confirm(ctx, held.ID)
	ce, ok := AsConflict(err)
	if !ok || ce.Kind != ConflictHoldExpired {
		t.Fatalf("expected HOLD_EXPIRED, got %v", err)
	}
	if got := f.ledger.status(t, held.ID); got != StatusExpired {
		t.Fatalf("expected persisted expired state, got %s", got)
	}
}

func TestConfirm_NotHolding(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	held, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	f.clk.Advance(6 * time.Minute)
	if _, err := f.engine.Confirm(ctx, held.ID); err == nil {
		t.Fatal("expected expiry conflict")
	}

	// Now the row is expired: confirming again is a NOT_HOLDING, not a
	// second HOLD_EXPIRED.
	_, err = f.engine.Confirm(ctx, held.ID)
	ce, ok := AsConflict(err)
	if !ok || ce.Kind != ConflictNotHolding {
		t.Fatalf("expected NOT_HOLDING, got %v", err)
	}
}

func TestConfirm_UnknownID(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.engine.Confirm(context.Background(), uuid.New())
	if !errors.Is(err, ErrCommitmentNotFound) {
		t.Fatalf("expected ErrCommitmentNotFound, got %v", err)
	}
}

// raceLedger makes the conditional transition fail once, as if a concurrent
// actor had moved the hold between the re-check and the update.
type raceLedger struct {
	*memLedger
	raced bool
}

func (l *raceLedger) Transition(ctx context.Context, id uuid.UUID, from, to CommitmentStatus) (*Commitment, error) {
	if !l.raced && from == StatusHold && to == StatusConfirmed {
		l.raced = true
		return nil, ErrCommitmentNotFound
	}
	return l.memLedger.Transition(ctx, id, from, to)
}

func TestConfirm_RaceLost(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	raced := &raceLedger{memLedger: f.ledger}
	f.engine.ledger = raced

	held, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	_, err = f.engine.Confirm(ctx, held.ID)
	ce, ok := AsConflict(err)
	if !ok || ce.Kind != ConflictRaceLost {
		t.Fatalf("expected RACE_LOST, got %v", err)
	}
}

func TestConfirm_NotificationFailureDoesNotFailConfirm(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.notifier.err = errors.New("smtp down")

	held, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	confirmed, err := f.engine.Confirm(ctx, held.ID)
	if err != nil {
		t.Fatalf("confirm must not surface notification failure: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}
}

func TestComputeAvailability(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	slots, err := f.engine.ComputeAvailability(ctx, f.tenantID, f.serviceID, "2026-03-02", 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two resources, 09:00-17:00 window, 60 minute service, 30 minute step,
	// now 08:00: 15 starts each.
	if len(slots) != 30 {
		t.Fatalf("expected 30 slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		if cur.StartAt.Before(prev.StartAt) {
			t.Fatalf("slots out of order at %d: %s before %s", i, cur.StartAt, prev.StartAt)
		}
		if cur.StartAt.Equal(prev.StartAt) && cur.ResourceID.String() < prev.ResourceID.String() {
			t.Fatalf("tie at %s not broken by resource id", cur.StartAt)
		}
	}
}

func TestComputeAvailability_ResourceFilter(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	slots, err := f.engine.ComputeAvailability(ctx, f.tenantID, f.serviceID, "2026-03-02", 0, &f.resourceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range slots {
		if s.ResourceID != f.resourceID {
			t.Fatalf("slot for unexpected resource %s", s.ResourceID)
		}
	}
	if len(slots) != 15 {
		t.Fatalf("expected 15 slots, got %d", len(slots))
	}
}

func TestComputeAvailability_ClosedDay(t *testing.T) {
	f := newFixture(t, nil)

	// 2026-03-01 is a Sunday and the tenant works Mon-Sat.
	slots, err := f.engine.ComputeAvailability(context.Background(), f.tenantID, f.serviceID, "2026-03-01", 0, nil)
	if err != nil {
		t.Fatalf("closed day must not error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a closed day, got %d", len(slots))
	}
}

func TestComputeAvailability_HoldExcludesOverlaps(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.engine.CreateHold(ctx, f.holdInput("09:00")); err != nil {
		t.Fatalf("hold: %v", err)
	}

	slots, err := f.engine.ComputeAvailability(ctx, f.tenantID, f.serviceID, "2026-03-02", 0, &f.resourceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blockedEnd := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for _, s := range slots {
		if s.StartAt.Before(blockedEnd) {
			t.Fatalf("slot %s overlaps the held 09:00-10:00 window", s.StartAt)
		}
	}
}

func TestComputeSlots_ResourceHoursOverrideTenant(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// Give Riley personal hours inside the tenant window.
	dir := f.engine.directory.(*memDirectory)
	r := dir.resources[f.resource2]
	ws, we := "10:00", "12:00"
	r.WorkStart, r.WorkEnd = &ws, &we
	dir.resources[f.resource2] = r

	slots, err := f.engine.ComputeSlots(ctx, f.resource2, f.serviceID, "2026-03-02", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots in 10:00-12:00, got %d", len(slots))
	}
	if !slots[0].StartAt.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first slot %s", slots[0].StartAt)
	}
}

func TestListResources(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	resources, err := f.engine.ListResources(ctx, f.tenantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}

	if _, err := f.engine.ListResources(ctx, uuid.New()); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestExpireLapsedHolds(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	h1, err := f.engine.CreateHold(ctx, f.holdInput("10:00"))
	if err != nil {
		t.Fatalf("hold 1: %v", err)
	}
	h2, err := f.engine.CreateHold(ctx, f.holdInput("11:00"))
	if err != nil {
		t.Fatalf("hold 2: %v", err)
	}
	if _, err := f.engine.Confirm(ctx, h2.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	f.clk.Advance(6 * time.Minute)

	expired, err := f.engine.ExpireLapsedHolds(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired, got %d", expired)
	}
	if got := f.ledger.status(t, h1.ID); got != StatusExpired {
		t.Fatalf("hold 1 should be expired, got %s", got)
	}
	if got := f.ledger.status(t, h2.ID); got != StatusConfirmed {
		t.Fatalf("confirmed row must not be touched, got %s", got)
	}
}
